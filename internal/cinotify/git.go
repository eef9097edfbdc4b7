package cinotify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// MaxChangedFiles caps the changed file list.
const MaxChangedFiles = 15

// Commit is the HEAD commit as reported by git.
type Commit struct {
	Subject   string
	Author    string
	ShortHash string
}

// Git is the repository the notifier describes.
type Git interface {
	HeadCommit(ctx context.Context) (Commit, error)
	// ChangedFiles returns `git diff --name-status` lines.
	ChangedFiles(ctx context.Context, before, after string) ([]string, error)
}

// ExecGit shells out to the git binary in Dir.
type ExecGit struct {
	Dir string
}

func (g ExecGit) HeadCommit(ctx context.Context) (Commit, error) {
	subject, err := g.run(ctx, "log", "-1", "--pretty=format:%s")
	if err != nil {
		return Commit{}, err
	}
	author, err := g.run(ctx, "log", "-1", "--pretty=format:%an")
	if err != nil {
		return Commit{}, err
	}
	hash, err := g.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return Commit{}, err
	}
	return Commit{Subject: subject, Author: author, ShortHash: hash}, nil
}

func (g ExecGit) ChangedFiles(ctx context.Context, before, after string) ([]string, error) {
	out, err := g.run(ctx, "diff", "--name-status", before, after)
	if err != nil {
		return nil, err
	}
	return splitLines(out, MaxChangedFiles), nil
}

func (g ExecGit) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}

func splitLines(s string, limit int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}
