package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

func page(t *testing.T, p *Pipeline, nodes []tree.Node, opts PageOptions) (*goquery.Document, string) {
	t.Helper()
	out, err := p.Page(context.Background(), nodes, opts)
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parsing page: %v", err)
	}
	return doc, out
}

func TestPage(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, stubTypesetter{})
	nodes := render(t, p, "\\section{Intro \\& $x$}\n\nBody <b>text</b> $y$.\n\n\\[ z \\]")

	doc, out := page(t, p, nodes, PageOptions{
		CSS:         "body { color: red; } </style><script>",
		Stylesheets: []string{"https://cdn.example/katex.min.css", "file:///tmp/katex.css"},
	})

	if got := doc.Find("title").Text(); got != `Intro \& $x$` {
		t.Errorf("title = %q", got)
	}
	if lang, _ := doc.Find("html").Attr("lang"); lang != DefaultLang {
		t.Errorf("lang = %q", lang)
	}

	var hrefs []string
	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs = append(hrefs, href)
	})
	if strings.Join(hrefs, " ") != "https://cdn.example/katex.min.css file:///tmp/katex.css" {
		t.Errorf("stylesheets = %v", hrefs)
	}

	if doc.Find("head style").Length() != 1 || doc.Find("script").Length() != 0 {
		t.Errorf("CSS not injected safely\n%s", out)
	}
	if got := doc.Find("main#document h1#section-1").Length(); got != 1 {
		t.Errorf("heading not inside document element\n%s", out)
	}
	if doc.Find("main#document p b").Length() != 0 {
		t.Errorf("source text was interpreted as HTML\n%s", out)
	}
	if got := doc.Find("main#document p m").Text(); got != "y" {
		t.Errorf("inline math markup = %q", got)
	}
	if doc.Find("main#document div.math-display").Length() != 1 {
		t.Errorf("display math missing\n%s", out)
	}
}

func TestPage_Options(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, stubTypesetter{})

	t.Run("explicit title and lang", func(t *testing.T) {
		t.Parallel()
		doc, _ := page(t, p, render(t, p, `\section{Ignored}`), PageOptions{Title: "Notes", Lang: "fr"})
		if got := doc.Find("title").Text(); got != "Notes" {
			t.Errorf("title = %q", got)
		}
		if lang, _ := doc.Find("html").Attr("lang"); lang != "fr" {
			t.Errorf("lang = %q", lang)
		}
	})

	t.Run("default title without heading", func(t *testing.T) {
		t.Parallel()
		doc, _ := page(t, p, render(t, p, "plain"), PageOptions{})
		if got := doc.Find("title").Text(); got != DefaultTitle {
			t.Errorf("title = %q", got)
		}
	})

	t.Run("toc", func(t *testing.T) {
		t.Parallel()
		nodes := render(t, p, "\\section{One}\n\\subsection{Two}\n\\section{Three}")
		doc, out := page(t, p, nodes, PageOptions{TOC: &TOCData{Title: "Contents"}})

		links := doc.Find("main#document nav.toc a")
		if links.Length() != 3 {
			t.Fatalf("toc links = %d\n%s", links.Length(), out)
		}
		if href, _ := links.Eq(2).Attr("href"); href != "#section-3" {
			t.Errorf("third link = %q", href)
		}
		if doc.Find("#section-3").Text() != "Three" {
			t.Errorf("toc anchor does not match heading id\n%s", out)
		}
	})
}

func TestPage_Cancelled(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, stubTypesetter{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Page(ctx, nil, PageOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Page() error = %v, want context.Canceled", err)
	}
}

func TestPage_CustomTemplate(t *testing.T) {
	t.Parallel()

	p, err := New(Config{
		Typesetter: stubTypesetter{},
		Template:   `<html><head><title>{{.Title}}</title></head><body>{{.Body}}</body></html>`,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := p.Page(context.Background(), []tree.Node{&tree.Text{Value: "hi"}}, PageOptions{CSS: "p{}"})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	want := "<html><head><title>Document</title><style>p{}</style></head><body><p>hi</p>\n</body></html>"
	if out != want {
		t.Errorf("Page() = %q, want %q", out, want)
	}
}
