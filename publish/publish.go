// Package publish pushes a newly authored post through git. The three
// commands run in sequence and a failure stops at the failing step; there is
// no retry -- remediation is manual.
package publish

import (
	"fmt"
	"os"
	"os/exec"
)

// execCommand is swapped out in tests.
var execCommand = exec.Command

// Publish stages the file, commits it with a generated message, and pushes
// to origin on the given branch. Command output goes straight to the
// terminal so git's own errors stay visible.
func Publish(path, title, branch string) error {
	steps := []struct {
		name string
		args []string
	}{
		{"stage", []string{"git", "add", path}},
		{"commit", []string{"git", "commit", "-m", CommitMessage(title)}},
		{"push", []string{"git", "push", "origin", branch}},
	}

	for _, step := range steps {
		cmd := execCommand(step.args[0], step.args[1:]...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("failed to %s post: %w", step.name, err)
		}
	}

	return nil
}

// CommitMessage builds the commit message for a new post.
func CommitMessage(title string) string {
	return fmt.Sprintf("Add new post: \"%s\"", title)
}
