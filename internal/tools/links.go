package tools

import (
	"context"
	"fmt"
	"net/url"
)

// Link delivery modes. "open" hands the URL to the host's browser opener;
// "markdown" returns a clickable link in the result text instead, for shells
// that render the transcript themselves.
const (
	LinkModeOpen     = "open"
	LinkModeMarkdown = "markdown"
)

// URLOpener asks the host environment to open a URL in the default browser.
type URLOpener interface {
	OpenURL(ctx context.Context, rawURL string) error
}

const (
	googleSearchBase  = "https://www.google.com/search?q="
	youtubeSearchBase = "https://www.youtube.com/results?search_query="
)

// WebSearchTool searches the web for a query, either opening the browser or
// handing back a markdown link depending on the configured delivery mode.
func WebSearchTool(mode string, opener URLOpener) Definition {
	return Definition{
		Name:        "web_search",
		Description: "Searches the web using Google for the given query.",
		Params: []Param{
			{Name: "query", Description: "The search query.", Required: true},
		},
		Notice: func(args map[string]string) string {
			return fmt.Sprintf("Searching the web for: %s", args["query"])
		},
		Handler: func(ctx context.Context, args map[string]string) (string, error) {
			query := args["query"]
			searchURL := googleSearchBase + url.QueryEscape(query)
			if mode == LinkModeMarkdown {
				return fmt.Sprintf("I have generated the search results for **'%s'**. Please click here: [Search Results](%s)", query, searchURL), nil
			}
			if err := opener.OpenURL(ctx, searchURL); err != nil {
				return "", fmt.Errorf("Error opening the web browser: %v", err)
			}
			return fmt.Sprintf("I have opened your default browser to the search results for '%s'.", query), nil
		},
	}
}

// PlayOnYouTubeTool opens or links a YouTube search for the given topic.
func PlayOnYouTubeTool(mode string, opener URLOpener) Definition {
	return Definition{
		Name:        "play_on_youtube",
		Description: "Opens YouTube and plays a video related to the given topic.",
		Params: []Param{
			{Name: "topic", Description: "What to play on YouTube.", Required: true},
		},
		Notice: func(args map[string]string) string {
			return fmt.Sprintf("Attempting to play '%s' on YouTube.", args["topic"])
		},
		Handler: func(ctx context.Context, args map[string]string) (string, error) {
			topic := args["topic"]
			if mode == LinkModeMarkdown {
				// The hands-off shell searches "<topic> song" so the top
				// result is playable media rather than an arbitrary page.
				videoURL := youtubeSearchBase + url.QueryEscape(topic+" song")
				return fmt.Sprintf("I have prepared the YouTube search for **'%s'**. Please click here: [Watch on YouTube](%s)", topic, videoURL), nil
			}
			videoURL := youtubeSearchBase + url.QueryEscape(topic)
			if err := opener.OpenURL(ctx, videoURL); err != nil {
				return "", fmt.Errorf("I was unable to play the video on YouTube: %v", err)
			}
			return fmt.Sprintf("Video for '%s' is now playing on YouTube.", topic), nil
		},
	}
}
