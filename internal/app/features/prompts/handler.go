// internal/app/features/prompts/handler.go
package prompts

import (
	circlestore "github.com/dalemusser/circles/internal/app/store/circles"
	tagstore "github.com/dalemusser/circles/internal/app/store/tags"
	"github.com/dalemusser/circles/internal/app/system/authz"
	"github.com/dalemusser/circles/internal/app/system/llm"
	"go.uber.org/zap"
)

// Handler generates AI conversation prompts tailored to a circle.
type Handler struct {
	Circles   *circlestore.Store
	Tags      *tagstore.Store
	Authz     *authz.Loader
	Completer llm.Completer
	Log       *zap.Logger
}

// NewHandler creates a prompts handler.
func NewHandler(circleStore *circlestore.Store, tagStore *tagstore.Store, authzLoader *authz.Loader, completer llm.Completer, logger *zap.Logger) *Handler {
	return &Handler{
		Circles:   circleStore,
		Tags:      tagStore,
		Authz:     authzLoader,
		Completer: completer,
		Log:       logger,
	}
}
