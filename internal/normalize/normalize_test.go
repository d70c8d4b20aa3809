package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestText_DocumentedExample(t *testing.T) {
	t.Parallel()

	text, emoji, links := Text(strPtr("Hello\n\nWorld 😊 check https://youtu.be/dQw4w9WgXcQ"))

	if text != "Hello World check" {
		t.Errorf("text = %q, want %q", text, "Hello World check")
	}
	if emoji != "😊" {
		t.Errorf("emoji = %q, want %q", emoji, "😊")
	}
	if links != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("links = %q", links)
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      *string
		wantText  string
		wantEmoji string
		wantLinks string
	}{
		{
			name:      "nil body",
			body:      nil,
			wantText:  domain.NoMessage,
			wantEmoji: domain.NoEmoji,
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "blank body",
			body:      strPtr(" \n\n "),
			wantText:  domain.NoMessage,
			wantEmoji: domain.NoEmoji,
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "plain text untouched",
			body:      strPtr("Paracetamol 500mg available"),
			wantText:  "Paracetamol 500mg available",
			wantEmoji: domain.NoEmoji,
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "carriage returns collapsed",
			body:      strPtr("line one\r\n\r\nline two\n"),
			wantText:  "line one line two",
			wantEmoji: domain.NoEmoji,
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "multiple emoji in order",
			body:      strPtr("💊 price drop 🔥🔥"),
			wantText:  "price drop",
			wantEmoji: "💊🔥🔥",
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "zwj sequence stays whole",
			body:      strPtr("doctor 👩‍⚕️ on duty"),
			wantText:  "doctor on duty",
			wantEmoji: "👩‍⚕️",
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "flag and skin tone",
			body:      strPtr("🇪🇹 clinic 👍🏽"),
			wantText:  "clinic",
			wantEmoji: "🇪🇹👍🏽",
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "keycap",
			body:      strPtr("step 1️⃣ wash"),
			wantText:  "step wash",
			wantEmoji: "1️⃣",
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "multiple links joined",
			body:      strPtr("watch https://www.youtube.com/watch?v=abc and https://youtu.be/xyz now"),
			wantText:  "watch and now",
			wantEmoji: domain.NoEmoji,
			wantLinks: "https://www.youtube.com/watch?v=abc, https://youtu.be/xyz",
		},
		{
			name:      "non youtube link kept",
			body:      strPtr("order at https://example.com/shop"),
			wantText:  "order at https://example.com/shop",
			wantEmoji: domain.NoEmoji,
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "emoji only",
			body:      strPtr("😷"),
			wantText:  "",
			wantEmoji: "😷",
			wantLinks: domain.NoYouTubeLink,
		},
		{
			name:      "amharic text preserved",
			body:      strPtr("ሰላም ✅"),
			wantText:  "ሰላም",
			wantEmoji: "✅",
			wantLinks: domain.NoYouTubeLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text, emoji, links := Text(tt.body)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if emoji != tt.wantEmoji {
				t.Errorf("emoji = %q, want %q", emoji, tt.wantEmoji)
			}
			if links != tt.wantLinks {
				t.Errorf("links = %q, want %q", links, tt.wantLinks)
			}
		})
	}
}

func TestText_NeverReturnsEmptySentinelFields(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "\n", "🙂", "https://youtu.be/a", "a\tb", "‍", "#", "©"}
	for _, in := range inputs {
		_, emoji, links := Text(strPtr(in))
		if emoji == "" || links == "" {
			t.Errorf("Text(%q) returned empty emoji=%q links=%q", in, emoji, links)
		}
	}
}

func TestRecord(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		item domain.RawItem
		want domain.NormalizedRecord
	}{
		{
			name: "fetcher supplied fields",
			item: domain.RawItem{
				SourceID:        "DoctorsET",
				ItemID:          42,
				ChannelTitle:    "  Doctors Ethiopia ",
				ChannelUsername: "@DoctorsET",
				Timestamp:       ts,
				Body:            strPtr("Clinic open 🏥"),
			},
			want: domain.NormalizedRecord{
				SourceID:        "DoctorsET",
				ItemID:          42,
				ChannelTitle:    "Doctors Ethiopia",
				ChannelUsername: "@DoctorsET",
				Text:            "Clinic open",
				Emoji:           "🏥",
				YouTubeLinks:    domain.NoYouTubeLink,
				ObservedAt:      ts,
			},
		},
		{
			name: "csv row with textual fields",
			item: domain.RawItem{
				RawID:           "1043.0",
				ChannelTitle:    "EAHCI",
				ChannelUsername: "EAHCI",
				RawTimestamp:    "2024-05-01 09:30:00+00:00",
				Body:            strPtr("hello"),
			},
			want: domain.NormalizedRecord{
				SourceID:        "EAHCI",
				ItemID:          1043,
				ChannelTitle:    "EAHCI",
				ChannelUsername: "@EAHCI",
				Text:            "hello",
				Emoji:           domain.NoEmoji,
				YouTubeLinks:    domain.NoYouTubeLink,
				ObservedAt:      ts,
			},
		},
		{
			name: "unparsable id and date degrade with issues",
			item: domain.RawItem{
				SourceID:     "CheMed123",
				RawID:        "abc",
				RawTimestamp: "yesterday",
			},
			want: domain.NormalizedRecord{
				SourceID:        "CheMed123",
				ItemID:          0,
				ChannelUsername: "@CheMed123",
				Text:            domain.NoMessage,
				Emoji:           domain.NoEmoji,
				YouTubeLinks:    domain.NoYouTubeLink,
				Issues: []domain.FieldError{
					{Field: "item_id", Message: "unparsable: abc"},
					{Field: "timestamp", Message: "unparsable: yesterday"},
				},
			},
		},
		{
			name: "missing id and date",
			item: domain.RawItem{SourceID: "yetenaweg", Body: strPtr("x")},
			want: domain.NormalizedRecord{
				SourceID:        "yetenaweg",
				ChannelUsername: "@yetenaweg",
				Text:            "x",
				Emoji:           domain.NoEmoji,
				YouTubeLinks:    domain.NoYouTubeLink,
				Issues: []domain.FieldError{
					{Field: "item_id", Message: "missing"},
					{Field: "timestamp", Message: "missing"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Record(tt.item)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Record() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecords_PreservesOrder(t *testing.T) {
	t.Parallel()

	items := []domain.RawItem{
		{SourceID: "A", ItemID: 3},
		{SourceID: "A", ItemID: 1},
		{SourceID: "B", ItemID: 2},
	}

	got := Records(items)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []int64{3, 1, 2} {
		if got[i].ItemID != want {
			t.Errorf("got[%d].ItemID = %d, want %d", i, got[i].ItemID, want)
		}
	}
}

func TestParseItemID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"123", 123, true},
		{" 77 ", 77, true},
		{"12.0", 12, true},
		{"12.5", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"1e30", 0, false},
		{"id-9", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseItemID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseItemID(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2023, 11, 2, 14, 5, 6, 0, time.UTC)

	for _, in := range []string{
		"2023-11-02T14:05:06Z",
		"2023-11-02 14:05:06+00:00",
		"2023-11-02 14:05:06",
		"2023-11-02T14:05:06",
	} {
		got, ok := ParseTimestamp(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = (%v, %v), want %v", in, got, ok, want)
		}
	}

	if got, ok := ParseTimestamp("2023-11-02"); !ok || got.Day() != 2 {
		t.Errorf("date-only layout not parsed: %v %v", got, ok)
	}
	if _, ok := ParseTimestamp("02/11/2023"); ok {
		t.Error("unknown layout should not parse")
	}
}

func TestExtractEmoji_RestKeepsNonEmoji(t *testing.T) {
	t.Parallel()

	emoji, rest := ExtractEmoji("a😀b#c")
	if emoji != "😀" {
		t.Errorf("emoji = %q", emoji)
	}
	if rest != "ab#c" {
		t.Errorf("rest = %q", rest)
	}
	if strings.ContainsRune(rest, '😀') {
		t.Error("emoji left in rest")
	}
}

func TestExtractEmoji_Clusters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        string
		wantEmoji string
		wantRest  string
	}{
		{name: "zwj family", in: "family 👨‍👩‍👧 day", wantEmoji: "👨‍👩‍👧", wantRest: "family  day"},
		{name: "unqualified heart", in: "love ❤ you", wantEmoji: "❤", wantRest: "love  you"},
		{name: "qualified heart", in: "love ❤️ you", wantEmoji: "❤️", wantRest: "love  you"},
		{name: "digits and symbols stay", in: "call 251 #3 *now*", wantEmoji: "", wantRest: "call 251 #3 *now*"},
		{name: "amharic text stays", in: "ሰላም 🙏", wantEmoji: "🙏", wantRest: "ሰላም "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			emoji, rest := ExtractEmoji(tt.in)
			if emoji != tt.wantEmoji {
				t.Errorf("emoji = %q, want %q", emoji, tt.wantEmoji)
			}
			if rest != tt.wantRest {
				t.Errorf("rest = %q, want %q", rest, tt.wantRest)
			}
		})
	}
}
