package markup

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "plain text",
			input:    "just some words",
			expected: []string{"<p>just some words</p>"},
		},
		{
			name:     "nested code bold italic",
			input:    "`*_test_*`",
			expected: []string{"<p><code><b><i>test</i></b></code></p>"},
		},
		{
			name:     "unbalanced star",
			input:    "Hello * this",
			expected: []string{"<p>Hello * this</p>"},
		},
		{
			name:     "level 1 heading",
			input:    "# hello",
			expected: []string{"<h1>hello</h1>"},
		},
		{
			name:     "level 3 heading",
			input:    "### hello",
			expected: []string{"<h3>hello</h3>"},
		},
		{
			name:     "heading level is clamped",
			input:    "######## deep",
			expected: []string{"<h6>deep</h6>"},
		},
		{
			name:     "heading with inline markup",
			input:    "# *big* news",
			expected: []string{"<h1><b>big</b> news</h1>"},
		},
		{
			name:     "paragraph separation",
			input:    "A\n\nB",
			expected: []string{"<p>A</p>", "<p>B</p>"},
		},
		{
			name:     "trailing empty heading is dropped",
			input:    "text\n\n# ",
			expected: []string{"<p>text</p>"},
		},
		{
			name:     "lone empty heading",
			input:    "# ",
			expected: []string{},
		},
		{
			name:     "tag pass-through",
			input:    "a <br/> b",
			expected: []string{"<p>a <br/> b</p>"},
		},
		{
			name:     "delimiters inside tag attributes",
			input:    `<a href="/x_y*z">link</a>`,
			expected: []string{`<p><a href="/x_y*z">link</a></p>`},
		},
		{
			name:     "mixed run at end of input",
			input:    "Hello *_this_* there",
			expected: []string{"<p>Hello <b><i>this</i></b> there</p>"},
		},
		{
			name:     "unmatched backtick",
			input:    "a ` b",
			expected: []string{"<p>a ` b</p>"},
		},
		{
			name:  "full document",
			input: "# hello\n\n`*_test_*`\n\nHello *_this_* <br/> is a * star\n\n# ",
			expected: []string{
				"<h1>hello</h1>",
				"<p><code><b><i>test</i></b></code></p>",
				"<p>Hello <b><i>this</i></b> <br/> is a * star</p>",
			},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := c.Convert(tt.input)
			if err != nil {
				t.Fatalf("Convert(%q) failed: %v", tt.input, err)
			}
			if !reflect.DeepEqual(actual, tt.expected) {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, actual, tt.expected)
			}
		})
	}
}

func TestConvertMalformedHeading(t *testing.T) {
	_, err := New().Convert("# \n\n# x")
	if err == nil {
		t.Fatal("expected an error for a heading followed by a heading")
	}
	if !errors.Is(err, ErrMalformedHeading) {
		t.Errorf("error = %v, want ErrMalformedHeading", err)
	}

	var merr *Error
	if !errors.As(err, &merr) || merr.Offset != 0 {
		t.Errorf("error = %#v, want *Error at offset 0", err)
	}
}

func TestConvertHeadingBeforeFence(t *testing.T) {
	_, err := New(WithCodeMode(CodeFenced)).Convert("# `x`")
	if !errors.Is(err, ErrMalformedHeading) {
		t.Errorf("error = %v, want ErrMalformedHeading", err)
	}
}

func TestRenderRejectsBrokenGroups(t *testing.T) {
	src := "_x*"
	r := NewRenderer(nil, nil)

	mismatched := &Group{
		Open:  Span{0, 1, Italic},
		Inner: Span{1, 2, Content},
		Close: Span{2, 3, Bold},
	}
	if _, err := r.Render(src, []Node{mismatched}); !errors.Is(err, ErrInvariant) {
		t.Errorf("mismatched group: error = %v, want ErrInvariant", err)
	}

	badCenter := &Group{
		Open:  Span{0, 1, Italic},
		Inner: Span{1, 2, Bold},
		Close: Span{2, 3, Italic},
	}
	if _, err := r.Render(src, []Node{badCenter}); !errors.Is(err, ErrInvariant) {
		t.Errorf("delimiter center: error = %v, want ErrInvariant", err)
	}

	if _, err := r.Render(src, []Node{Span{0, 1, Blank}}); !errors.Is(err, ErrUnexpectedNode) {
		t.Errorf("standalone blank: error = %v, want ErrUnexpectedNode", err)
	}
}

type fakeHighlighter struct {
	langs map[string]bool
	err   error
	calls []string
}

func (f *fakeHighlighter) Known(lang string) bool {
	return f.langs[lang]
}

func (f *fakeHighlighter) Highlight(lang, body string) (string, error) {
	f.calls = append(f.calls, lang)
	if f.err != nil {
		return "", f.err
	}
	return "<pre class=\"" + lang + "\">" + strings.ToUpper(body) + "</pre>", nil
}

func TestConvertFenced(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		calls    []string
	}{
		{
			name:     "known language",
			input:    "`go\nx := 1`",
			expected: []string{`<pre class="go">X := 1</pre>`},
			calls:    []string{"go"},
		},
		{
			name:     "crlf after language line",
			input:    "`go\r\nx`",
			expected: []string{`<pre class="go">X</pre>`},
			calls:    []string{"go"},
		},
		{
			name:     "unknown language",
			input:    "`cobol\nx`",
			expected: []string{"<code>cobol\nx</code>"},
		},
		{
			name:     "single line fence",
			input:    "`x_y`",
			expected: []string{"<code>x_y</code>"},
		},
		{
			name:     "language name without a body",
			input:    "`go`",
			expected: []string{"<code>go</code>"},
		},
		{
			name:     "language name inline",
			input:    "see `go` docs",
			expected: []string{"<p>see </p>", "<code>go</code>", "<p> docs</p>"},
		},
		{
			name:     "empty fence",
			input:    "``",
			expected: []string{"<code></code>"},
		},
		{
			name:     "fences between text",
			input:    "`a` and `b`",
			expected: []string{"<code>a</code>", "<p> and </p>", "<code>b</code>"},
		},
		{
			name:     "emphasis beside a fence",
			input:    "_x_ `y`",
			expected: []string{"<p><i>x</i> </p>", "<code>y</code>"},
		},
		{
			name:     "unclosed fence",
			input:    "`abc",
			expected: []string{"<p>`abc</p>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHighlighter{langs: map[string]bool{"go": true}}
			c := New(WithCodeMode(CodeFenced), WithHighlighter(h))

			actual, err := c.Convert(tt.input)
			if err != nil {
				t.Fatalf("Convert(%q) failed: %v", tt.input, err)
			}
			if !reflect.DeepEqual(actual, tt.expected) {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, actual, tt.expected)
			}
			if !reflect.DeepEqual(h.calls, tt.calls) {
				t.Errorf("highlighter calls = %v, want %v", h.calls, tt.calls)
			}
		})
	}
}

func TestConvertFencedHighlighterFailure(t *testing.T) {
	h := &fakeHighlighter{
		langs: map[string]bool{"go": true},
		err:   errors.New("lexer exploded"),
	}
	c := New(WithCodeMode(CodeFenced), WithHighlighter(h))

	actual, err := c.Convert("`go\nx`")
	if err != nil {
		t.Fatalf("highlighter failure leaked into Convert: %v", err)
	}
	expected := []string{"<code>go\nx</code>"}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("Convert = %q, want %q", actual, expected)
	}
}

func TestConvertFencedWithoutHighlighter(t *testing.T) {
	actual, err := New(WithCodeMode(CodeFenced)).Convert("`go\nx`")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	expected := []string{"<code>go\nx</code>"}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("Convert = %q, want %q", actual, expected)
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func literalText(fragments []string) string {
	return tagPattern.ReplaceAllString(strings.Join(fragments, ""), "")
}

// TestRoundtripLiteralText checks that the text left after stripping tags
// survives a second conversion unchanged
func TestRoundtripLiteralText(t *testing.T) {
	inputs := []string{
		"plain words only",
		"Hello *_this_* there",
		"# title",
		"one `two` three",
	}

	c := New()
	for _, in := range inputs {
		first, err := c.Convert(in)
		if err != nil {
			t.Fatalf("Convert(%q) failed: %v", in, err)
		}
		text := literalText(first)

		second, err := c.Convert(text)
		if err != nil {
			t.Fatalf("Convert(%q) failed: %v", text, err)
		}
		if got := literalText(second); got != text {
			t.Errorf("roundtrip of %q: got %q, want %q", in, got, text)
		}
	}
}

func TestConvertConcurrent(t *testing.T) {
	c := New()
	inputs := map[string]string{
		"*a*":   "<p><b>a</b></p>",
		"_b_":   "<p><i>b</i></p>",
		"# c":   "<h1>c</h1>",
		"`d`":   "<p><code>d</code></p>",
		"e\n\nf": "<p>e</p><p>f</p>",
	}

	var wg sync.WaitGroup
	for in, want := range inputs {
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(in, want string) {
				defer wg.Done()
				got, err := c.Convert(in)
				if err != nil {
					t.Errorf("Convert(%q) failed: %v", in, err)
					return
				}
				if strings.Join(got, "") != want {
					t.Errorf("Convert(%q) = %q, want %q", in, got, want)
				}
			}(in, want)
		}
	}
	wg.Wait()
}
