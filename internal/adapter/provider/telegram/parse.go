package telegram

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

var backgroundURLRe = regexp.MustCompile(`background-image:\s*url\(['"]?([^'")]+)['"]?\)`)

// ParsePage extracts the posts of one channel preview page, in page order.
// Posts without a numeric id are skipped: the preview always renders one.
func ParsePage(r io.Reader, src domain.Source) ([]domain.RawItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := channelTitle(doc)

	var items []domain.RawItem
	doc.Find(".tgme_widget_message[data-post]").Each(func(_ int, post *goquery.Selection) {
		rawID := postID(post.AttrOr("data-post", ""))
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			return
		}

		item := domain.RawItem{
			SourceID:        src.ID,
			ItemID:          id,
			RawID:           rawID,
			ChannelTitle:    title,
			ChannelUsername: src.Username(),
		}

		if text, ok := messageText(post); ok {
			item.Body = &text
		}

		if dt, ok := post.Find(".tgme_widget_message_date time").Attr("datetime"); ok {
			item.RawTimestamp = dt
			if ts, err := time.Parse(time.RFC3339, dt); err == nil {
				item.Timestamp = ts
			}
		}

		if url := photoURL(post); url != "" {
			item.Media = &domain.MediaRef{Kind: domain.MediaPhoto, URL: url}
		}

		items = append(items, item)
	})

	return items, nil
}

func channelTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find(".tgme_channel_info_header_title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
}

// postID returns the id part of a data-post value such as "DoctorsET/123".
func postID(dataPost string) string {
	i := strings.LastIndexByte(dataPost, '/')
	if i < 0 {
		return ""
	}
	return dataPost[i+1:]
}

// messageText returns the post's own text, skipping quoted replies.
// <br> tags become newlines.
func messageText(post *goquery.Selection) (string, bool) {
	sel := post.Find(".tgme_widget_message_text").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(".tgme_widget_message_reply").Length() == 0
	}).First()
	if sel.Length() == 0 {
		return "", false
	}

	sel = sel.Clone()
	sel.Find("br").ReplaceWithHtml("\n")
	return sel.Text(), true
}

func photoURL(post *goquery.Selection) string {
	style := post.Find(".tgme_widget_message_photo_wrap").First().AttrOr("style", "")
	m := backgroundURLRe.FindStringSubmatch(style)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
