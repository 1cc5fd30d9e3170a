// Package identity resolves who (and which model) is recording an intent.
//
// A Resolver is created per invocation; its cache never outlives the call
// that created it.
package identity

import (
	"context"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"time"

	"github.com/bickolasliu/intention-mcp/internal/intent"
)

// gitTimeout bounds each git config lookup.
const gitTimeout = 2 * time.Second

// UserEnv lists environment variables consulted for the user, in order.
var UserEnv = []string{"INTENTION_USER", "GIT_AUTHOR_NAME", "GIT_COMMITTER_NAME", "USER", "USERNAME"}

// ModelEnv lists environment variables consulted for the model, in order.
var ModelEnv = []string{"ANTHROPIC_MODEL", "OPENAI_MODEL", "AI_MODEL"}

// Resolver looks up the acting user and model.
type Resolver struct {
	// Override, when set, wins over every other source.
	Override string

	// Dir is where git config is read.
	Dir string

	Getenv    func(string) string
	GitConfig func(ctx context.Context, dir, key string) (string, error)
	OSUser    func() (string, error)

	once sync.Once
	user string
}

// New returns a Resolver backed by the process environment, git and the OS.
func New(override, dir string) *Resolver {
	return &Resolver{
		Override:  override,
		Dir:       dir,
		Getenv:    os.Getenv,
		GitConfig: gitConfig,
		OSUser:    osUser,
	}
}

// User returns the acting user. The result is cached for the Resolver's life.
// Order: override, UserEnv, git user.name, git user.email, OS account, "unknown".
func (r *Resolver) User(ctx context.Context) string {
	r.once.Do(func() {
		r.user = r.resolveUser(ctx)
	})
	return r.user
}

func (r *Resolver) resolveUser(ctx context.Context) string {
	if v := strings.TrimSpace(r.Override); v != "" {
		return v
	}
	if r.Getenv != nil {
		for _, key := range UserEnv {
			if v := strings.TrimSpace(r.Getenv(key)); v != "" {
				return v
			}
		}
	}
	if r.GitConfig != nil {
		for _, key := range []string{"user.name", "user.email"} {
			if v, err := r.GitConfig(ctx, r.Dir, key); err == nil && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	if r.OSUser != nil {
		if v, err := r.OSUser(); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return intent.UnknownUser
}

// Model returns explicit if set, else the first ModelEnv value, else "unknown".
func (r *Resolver) Model(explicit string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if r.Getenv != nil {
		for _, key := range ModelEnv {
			if v := strings.TrimSpace(r.Getenv(key)); v != "" {
				return v
			}
		}
	}
	return intent.UnknownModel
}

func gitConfig(ctx context.Context, dir, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "config", key)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func osUser() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
