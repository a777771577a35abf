// internal/domain/models/tagconfig.go
package models

// TagConfig is static reference data describing a circle tag. Tags steer
// the tone of AI-generated conversation prompts; the "support" category
// switches prompt generation to gentle, support-safe phrasing.
type TagConfig struct {
	Key          string `bson:"_id" json:"tagKey"`
	DisplayLabel string `bson:"display_label" json:"displayLabel"`
	Category     string `bson:"category" json:"category"`
	Description  string `bson:"description,omitempty" json:"description,omitempty"`
	ToneGuidance string `bson:"tone_guidance,omitempty" json:"toneGuidance,omitempty"`
	Active       bool   `bson:"active" json:"active"`
}
