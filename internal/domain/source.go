package domain

import "context"

// ProtocolSource yields raw protocol text for one tool.
//
// Index returns the output of `<tool> --tldr`. Command returns the output
// of `<tool> <words> --tldr` for a dot-separated command name, or an error
// wrapping ErrCommandUnavailable when the command cannot be reached.
type ProtocolSource interface {
	Index(ctx context.Context) (string, error)
	Command(ctx context.Context, name string) (string, error)
}
