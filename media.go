package scitech

import (
	"fmt"
	"net/url"
)

const (
	imageServiceURL  = "https://image.pollinations.ai/prompt/"
	youtubeSearchURL = "https://www.youtube.com/results"
	siteName         = "SciTech IL"
	siteShareText    = "פלטפורמת לימוד אינטראקטיבית למדעים וטכנולוגיה"
)

// TopicImageURL returns a generated card image for a topic. The topic id seeds
// the image so a card keeps its picture between visits.
func TopicImageURL(topic Topic) string {
	prompt := topic.VisualPrompt
	if prompt == "" {
		prompt = topic.Title
	}
	q := url.Values{}
	q.Set("width", "400")
	q.Set("height", "200")
	q.Set("nologo", "true")
	q.Set("seed", topic.ID)
	return imageServiceURL + url.PathEscape(prompt) + "?" + q.Encode()
}

// DemoImageURL returns a generated square image for a demonstration
func DemoImageURL(demo Demonstration) string {
	prompt := demo.VisualPrompt
	if prompt == "" {
		prompt = demo.Title
	}
	q := url.Values{}
	q.Set("width", "400")
	q.Set("height", "400")
	q.Set("nologo", "true")
	return imageServiceURL + url.PathEscape(prompt) + "?" + q.Encode()
}

// YouTubeSearchURL links to YouTube results for a query
func YouTubeSearchURL(query string) string {
	return youtubeSearchURL + "?" + url.Values{"search_query": {query}}.Encode()
}

// ShareData is what the share button hands to the Web Share API or the clipboard
type ShareData struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SiteShare is the share data of the site header
func SiteShare() ShareData {
	return ShareData{Title: siteName, Text: siteShareText}
}

// TopicShare is the share data of a topic card
func TopicShare(topic Topic) ShareData {
	return ShareData{Title: topic.Title, Text: topic.Description}
}

// LessonShare is the share data of a lesson page
func LessonShare(topic Topic, grade GradeLevel) ShareData {
	return ShareData{
		Title: fmt.Sprintf("%s - %s", siteName, topic.Title),
		Text:  fmt.Sprintf("אני לומד על %s (%s) באתר %s!", topic.Title, grade.Label, siteName),
	}
}
