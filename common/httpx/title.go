package httpx

import (
	"bytes"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/hrekt/hrekt/common/httputilz"
	"golang.org/x/net/html"
)

var (
	reTitle       = regexp.MustCompile(`(?ims)<\s*title[^>]*>(.*?)<\s*/\s*title\s*>`)
	reContentType = regexp.MustCompile(`(?im)\s*charset="(.*?)"|charset=(.*?)"\s*`)
)

// ExtractTitle returns the text of the first <title> element in body,
// entity-decoded with whitespace collapsed. It returns "" when there is none.
func ExtractTitle(body []byte, headers http.Header) (title string) {
	// Try to parse the DOM
	titleDom, err := getTitleWithDom(body)
	// In case of error fallback to regex
	if err != nil {
		if match := reTitle.FindSubmatch(body); len(match) > 1 {
			title = html.UnescapeString(string(match[1]))
		}
	} else {
		title = nodeText(titleDom)
	}

	// remove unwanted chars
	title = strings.TrimSpace(httputilz.NormalizeSpaces(title))
	if title == "" {
		return ""
	}

	// Non UTF-8
	switch charset(body, headers) {
	case "gbk":
		if titleUtf8, err := Decodegbk([]byte(title)); err == nil {
			return string(titleUtf8)
		}
	case "big5":
		if titleUtf8, err := Decodebig5([]byte(title)); err == nil {
			return string(titleUtf8)
		}
	}
	return title
}

// charset detects the legacy encodings that need transcoding, first from
// the Content-Type header and then from a charset declared in the document.
func charset(body []byte, headers http.Header) string {
	candidates := []string{strings.ToLower(strings.Join(headers.Values("Content-Type"), ";"))}
	if match := reContentType.FindSubmatch(body); len(match) != 0 {
		for i, v := range match {
			if len(v) != 0 && i != 0 {
				candidates = append(candidates, strings.ToLower(string(v)))
			}
		}
	}
	for _, candidate := range candidates {
		switch {
		case strings.Contains(candidate, "gb2312"), strings.Contains(candidate, "gbk"):
			return "gbk"
		case strings.Contains(candidate, "big5"):
			return "big5"
		}
	}
	return ""
}

func getTitleWithDom(body []byte) (*html.Node, error) {
	var title *html.Node
	var crawler func(*html.Node)
	crawler = func(node *html.Node) {
		if title != nil {
			return
		}
		if node.Type == html.ElementNode && node.Data == "title" {
			title = node
			return
		}
		for child := node.FirstChild; child != nil && title == nil; child = child.NextSibling {
			crawler(child)
		}
	}
	htmlDoc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	crawler(htmlDoc)
	if title != nil {
		return title, nil
	}
	return nil, errors.New("title not found")
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			buf.WriteString(child.Data)
		}
	}
	return buf.String()
}
