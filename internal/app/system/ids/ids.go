// internal/app/system/ids/ids.go
package ids

import "github.com/google/uuid"

// Opaque, prefixed identifiers. The prefix makes an id self-describing in
// logs and queue payloads; the UUID body keeps it unguessable.

func NewCircleID() string       { return "circle_" + uuid.NewString() }
func NewMessageID() string      { return "msg_" + uuid.NewString() }
func NewInvitationID() string   { return "inv_" + uuid.NewString() }
func NewSubscriptionID() string { return "sub_" + uuid.NewString() }
func NewEventID() string        { return "evt_" + uuid.NewString() }
