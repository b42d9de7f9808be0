package inbox

import "testing"

func TestExtractPermalink(t *testing.T) {
	link := "https://www.reddit.com/r/test/comments/1abc2d/my_post_title"

	tests := []struct {
		name    string
		raw     string
		trimmed string
		want    string
	}{
		{
			name: "permalink in raw message only",
			raw:  "Subject: Re: [r/test] My Post\r\n\r\n<a href=\"" + link + "\">thread</a>",
			want: link,
		},
		{
			name:    "permalink in trimmed body",
			raw:     "Subject: Re: [r/test] My Post",
			trimmed: "See " + link + " for context.",
			want:    link,
		},
		{
			name:    "raw wins over trimmed",
			raw:     "header " + link,
			trimmed: "https://www.reddit.com/r/other/comments/9zzz9/other_post",
			want:    link,
		},
		{
			name:    "no permalink anywhere",
			raw:     "nothing here",
			trimmed: "still nothing",
			want:    "",
		},
		{
			name: "plain http scheme accepted",
			raw:  "http://www.reddit.com/r/test/comments/1abc2d/my_post_title",
			want: "http://www.reddit.com/r/test/comments/1abc2d/my_post_title",
		},
		{
			name: "non-permalink reddit URL rejected",
			raw:  "https://www.reddit.com/r/test/new/.rss",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPermalink(tt.raw, tt.trimmed); got != tt.want {
				t.Errorf("ExtractPermalink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThreadID(t *testing.T) {
	tests := []struct {
		permalink string
		want      string
	}{
		{"https://www.reddit.com/r/test/comments/1abc2d/my_post_title", "t3_1abc2d"},
		{"https://WWW.REDDIT.COM/r/Test/comments/1ABC2D/my_post", "t3_1abc2d"},
		{"https://example.com/not/a/permalink", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ThreadID(tt.permalink); got != tt.want {
			t.Errorf("ThreadID(%q) = %q, want %q", tt.permalink, got, tt.want)
		}
	}
}
