package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/telemetry"
)

// CommandSource reads protocol text by running the target tool with its
// documentation flag. Calls run one at a time, each blocking until the
// child exits.
type CommandSource struct {
	tool    string
	docFlag string
	env     []string
	dir     string
	logger  *zap.Logger
}

// CommandSourceOptions configures a CommandSource.
type CommandSourceOptions struct {
	Tool    string
	DocFlag string
	Env     []string
	Dir     string
}

func NewCommandSource(opts CommandSourceOptions, logger *zap.Logger) *CommandSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	docFlag := strings.TrimSpace(opts.DocFlag)
	if docFlag == "" {
		docFlag = domain.DefaultDocFlag
	}
	return &CommandSource{
		tool:    strings.TrimSpace(opts.Tool),
		docFlag: docFlag,
		env:     append([]string(nil), opts.Env...),
		dir:     opts.Dir,
		logger:  logger.Named("process"),
	}
}

// Index runs `<tool> --tldr`. Any failure is fatal to the run.
func (s *CommandSource) Index(ctx context.Context) (string, error) {
	out, stderr, err := s.run(ctx, nil)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, domain.ErrExecutableNotFound) || isContextErr(err) {
		return "", err
	}
	return "", domain.E(domain.CodeProtocolUnavailable, "process.index", s.describeFailure(nil, stderr, err), err)
}

// Command runs `<tool> <words...> --tldr`, splitting dotted names into words.
// A failing command wraps domain.ErrCommandUnavailable.
func (s *CommandSource) Command(ctx context.Context, name string) (string, error) {
	words := CommandWords(name)
	out, stderr, err := s.run(ctx, words)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, domain.ErrExecutableNotFound) || isContextErr(err) {
		return "", err
	}
	s.logger.Debug("command fetch failed",
		telemetry.EventField(telemetry.EventCommandUnavailable),
		telemetry.CommandField(name),
		zap.Int("exit_code", exitCode(err)),
		zap.String("stderr", stderr),
	)
	return "", fmt.Errorf("%w: %s", domain.ErrCommandUnavailable, s.describeFailure(words, stderr, err))
}

// CommandWords splits a dotted command name into argument words.
func CommandWords(name string) []string {
	return strings.Fields(strings.ReplaceAll(name, ".", " "))
}

func (s *CommandSource) run(ctx context.Context, words []string) (string, string, error) {
	if s.tool == "" {
		return "", "", domain.E(domain.CodeInvalidArgument, "process.run", "tool is required", nil)
	}
	path, err := exec.LookPath(s.tool)
	if err != nil {
		return "", "", domain.E(domain.CodeProtocolUnavailable, "process.run",
			fmt.Sprintf("executable %q not found", s.tool),
			fmt.Errorf("%w: %v", domain.ErrExecutableNotFound, err))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	args := append(append([]string(nil), words...), s.docFlag)
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = s.dir
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}
	return Capture(ctx, cmd)
}

func (s *CommandSource) describeFailure(words []string, stderr string, err error) string {
	invocation := strings.Join(append(append([]string{s.tool}, words...), s.docFlag), " ")
	msg := fmt.Sprintf("%s failed", invocation)
	if code := exitCode(err); code >= 0 {
		msg = fmt.Sprintf("%s exited with status %d", invocation, code)
	}
	if stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, stderr)
	}
	return msg
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
