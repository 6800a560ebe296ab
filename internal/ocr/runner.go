package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner runs an external command. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args under ctx.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	fields := []zap.Field{
		zap.String("cmd", name),
		zap.String("args", strings.Join(args, " ")),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		zap.L().Warn("ocr: exec failed", append(fields,
			zap.Error(err),
			zap.String("stderr", truncate(errb.String(), 8<<10)),
		)...)
	} else {
		zap.L().Debug("ocr: exec ok", append(fields, zap.Int("stdout_bytes", out.Len()))...)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
