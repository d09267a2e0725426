package viewer

import (
	"context"
	"errors"
	"figview/internal/core/domain"

	"github.com/rs/zerolog/log"
)

const (
	ActionZoomOut  = "zoom-out"
	ActionZoomIn   = "zoom-in"
	ActionFit      = "fit"
	ActionReset    = "reset"
	ActionDownload = "download"
	ActionClose    = "close"
)

// Action is a toolbar button.
type Action struct {
	Name     string
	Label    string
	Shortcut string
	Run      func(ctx context.Context) error
}

// Toolbar keeps actions in registration order so the host can lay them out left to right.
type Toolbar struct {
	actions map[string]Action
	order   []string
}

func (t *Toolbar) Register(action Action) {
	if t.actions == nil {
		t.actions = make(map[string]Action)
	}

	if _, exists := t.actions[action.Name]; !exists {
		t.order = append(t.order, action.Name)
	}

	log.Debug().Str("action", action.Name).Msg("adding action to toolbar")
	t.actions[action.Name] = action
}

func (t *Toolbar) Get(name string) (Action, error) {
	if t.actions == nil {
		return Action{}, errors.New("can't fetch action, toolbar not initialized")
	}

	action, ok := t.actions[name]
	if !ok {
		return Action{}, domain.ErrActionNotFound
	}

	return action, nil
}

func (t *Toolbar) List() []Action {
	actions := make([]Action, 0, len(t.order))
	for _, name := range t.order {
		actions = append(actions, t.actions[name])
	}

	return actions
}
