package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sungheyn/hadamirror/post"
	"github.com/sungheyn/hadamirror/publish"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Interactively author a new blog post",
	Run:   runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	scanner := bufio.NewScanner(os.Stdin)

	title := prompt(scanner, "Enter post title: ")
	if title == "" {
		fmt.Fprintln(os.Stderr, "Title cannot be empty")
		os.Exit(1)
	}

	categories := prompt(scanner, "Enter categories (comma-separated, Enter to skip): ")
	if categories == "" {
		categories = "blog"
	}

	var tags []string
	for _, tag := range strings.Split(prompt(scanner, "Enter tags (comma-separated, Enter to skip): "), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	fmt.Println("Enter post content (type 'END' on its own line to finish):")
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "END" {
			break
		}
		lines = append(lines, line)
	}
	body := strings.Join(lines, "\n")
	if strings.TrimSpace(body) == "" {
		fmt.Fprintln(os.Stderr, "Content cannot be empty")
		os.Exit(1)
	}

	filename, content := post.FromManual(post.Manual{
		Title:      title,
		Categories: categories,
		Tags:       tags,
		Body:       body,
	}, time.Now())

	created, err := post.Write(cfg.PostsDir, filename, content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create post: %v\n", err)
		os.Exit(1)
	}
	path := filepath.Join(cfg.PostsDir, filename)
	if !created {
		fmt.Fprintf(os.Stderr, "Post already exists: %s\n", path)
		os.Exit(1)
	}
	fmt.Printf("Created %s\n", path)

	answer := prompt(scanner, "Publish this post now? (y/n): ")
	if strings.ToLower(answer) != "y" {
		fmt.Println("Post saved locally. To publish later, run:")
		fmt.Printf("  git add %s\n", path)
		fmt.Printf("  git commit -m %q\n", publish.CommitMessage(title))
		fmt.Printf("  git push origin %s\n", cfg.PublishBranch)
		return
	}

	if err := publish.Publish(path, title, cfg.PublishBranch); err != nil {
		fmt.Fprintf(os.Stderr, "Publish failed: %v\n", err)
		fmt.Fprintln(os.Stderr, "Publish manually with:")
		fmt.Fprintf(os.Stderr, "  git add %s\n", path)
		fmt.Fprintf(os.Stderr, "  git commit -m %q\n", publish.CommitMessage(title))
		fmt.Fprintf(os.Stderr, "  git push origin %s\n", cfg.PublishBranch)
		os.Exit(1)
	}
	fmt.Println("Post published.")
}

// prompt prints a label and reads one trimmed line, returning "" on EOF.
func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
