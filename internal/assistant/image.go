package assistant

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vivekps/nexus/internal/conversation"
)

// imageTagPattern marks an attached image inside the text input, e.g.
// "What do you see? [IMAGE_PATH:/tmp/cat.png]".
var imageTagPattern = regexp.MustCompile(`\[IMAGE_PATH:(.*?)\]`)

const defaultImagePrompt = "What do you see in this image?"

// BuildTurnParts turns raw shell input into content items. An image tag is
// resolved to inline image data before the endpoint is ever contacted; a
// missing or unreadable file fails the turn right here with a user-facing
// message, saving the endpoint round-trip.
func BuildTurnParts(input string) ([]conversation.ContentItem, error) {
	match := imageTagPattern.FindStringSubmatch(input)
	if match == nil {
		return []conversation.ContentItem{conversation.TextItem(input)}, nil
	}

	imagePath := strings.TrimSpace(match[1])
	prompt := strings.TrimSpace(strings.Replace(input, match[0], "", 1))
	if prompt == "" {
		prompt = defaultImagePrompt
	}

	data, err := os.ReadFile(imagePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("Error: The image file was not found at %s. Please verify the path.", imagePath)
	}
	if err != nil {
		return nil, fmt.Errorf("Error loading image for analysis: %v", err)
	}

	return []conversation.ContentItem{
		conversation.ImageItem(imageMIMEType(imagePath), data),
		conversation.TextItem(prompt),
	}, nil
}

func imageMIMEType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/png"
}
