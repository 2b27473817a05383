package api

import "fmt"

const (
	maxTitleLength   = 256
	maxContentLength = 1 << 20 // 1 MB
	maxCommentLength = 4096
)

func validateTitle(title string) error {
	if len(title) > maxTitleLength {
		return fmt.Errorf("title exceeds %d characters", maxTitleLength)
	}
	return nil
}

func validateContent(content string) error {
	if len(content) > maxContentLength {
		return fmt.Errorf("content exceeds %d bytes", maxContentLength)
	}
	return nil
}

func validateComment(text string) error {
	if text == "" {
		return fmt.Errorf("comment text cannot be empty")
	}
	if len(text) > maxCommentLength {
		return fmt.Errorf("comment text exceeds %d characters", maxCommentLength)
	}
	return nil
}
