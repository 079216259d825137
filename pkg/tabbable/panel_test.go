package tabbable

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gabrielmiguelok/tabkit/pkg/attrs"
	"github.com/gabrielmiguelok/tabkit/pkg/htmltest"
	"github.com/gabrielmiguelok/tabkit/pkg/nav"
	"github.com/gabrielmiguelok/tabkit/pkg/urlfmt"
)

func twoItems() []Item {
	return []Item{
		{Title: "One", Content: "<p>A</p>"},
		{Title: "Two", Content: "<p>B</p>"},
	}
}

func TestRenderEndToEnd(t *testing.T) {
	cfg := NewBuilder().WithContents(twoItems()...).Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := "<ul class='nav nav-tabs' role='tablist'>" +
		"<li class='active'><a href='#one' role='tab' data-toggle='tab'>One</a></li>" +
		"<li><a href='#two' role='tab' data-toggle='tab'>Two</a></li>" +
		"</ul>" +
		"<div class='tab-content'><input type='hidden' id='tab-parent_id' value=''>" +
		"<div class='tab-pane active' id='one'><p>A</p></div>" +
		"<div class='tab-pane' id='two'><p>B</p></div>" +
		"</div>"
	if got != want {
		t.Errorf("Unexpected markup\n got: %s\nwant: %s", got, want)
	}
}

func TestRenderLinksAndPanesAligned(t *testing.T) {
	items := []Item{
		{Title: "Alpha", Content: "a"},
		{Title: "Beta", Content: "b"},
		{Title: "Gamma", Content: "c", ContentID: "third"},
	}
	cfg := NewBuilder().Tabs(items...).Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	ha := htmltest.NewHTMLAssert(t, got)
	anchors := ha.Doc.All("a")
	panes := ha.Doc.WithClass("tab-pane")
	if len(anchors) != len(items) || len(panes) != len(items) {
		t.Fatalf("Expected %d links and panes, got %d and %d", len(items), len(anchors), len(panes))
	}

	for i := range items {
		href, _ := htmltest.Attr(anchors[i], "href")
		id, _ := htmltest.Attr(panes[i], "id")
		if href != "#"+id {
			t.Errorf("Link %d points at %q but pane %d has id %q", i, href, i, id)
		}
		ha.Equal(items[i].Title, htmltest.Text(anchors[i]))
		ha.Equal(items[i].Content, htmltest.Inner(panes[i]))
	}
}

func TestRenderActive(t *testing.T) {
	tests := []struct {
		name   string
		active int
		want   int
	}{
		{"first", 0, 0},
		{"second", 1, 1},
		{"negative", -1, -1},
		{"past end", 2, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewBuilder().Tabs(twoItems()...).Active(tt.active).Build()

			got, err := NewPanel().Render(cfg)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}

			doc := htmltest.Parse(t, got)
			items := doc.All("li")
			panes := doc.WithClass("tab-pane")
			for i := range panes {
				wantActive := i == tt.want
				if htmltest.HasClass(panes[i], "active") != wantActive {
					t.Errorf("Pane %d active=%v, want %v", i, !wantActive, wantActive)
				}
				if htmltest.HasClass(items[i], "active") != wantActive {
					t.Errorf("Link %d active=%v, want %v", i, !wantActive, wantActive)
				}
			}
		})
	}
}

func TestRenderFade(t *testing.T) {
	cfg := NewBuilder().Tabs(twoItems()...).WithFade().Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	ha := htmltest.NewHTMLAssert(t, got)
	ha.HasClasses("one", "tab-pane", "fade", "in", "active")
	ha.HasClasses("two", "tab-pane", "fade")
	ha.LacksClass("two", "in")
	ha.LacksClass("two", "active")
	ha.Contains(got, "class='tab-pane fade in active'")
}

func TestRenderContentID(t *testing.T) {
	cfg := NewBuilder().Tabs(
		Item{Title: "My Tab", Content: "x", ContentID: "custom-pane"},
		Item{Title: "My Other Tab", Content: "y"},
	).Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	ha := htmltest.NewHTMLAssert(t, got)
	ha.HasID("custom-pane")
	ha.HasID("my-other-tab")

	anchors := ha.Doc.All("a")
	contentID, ok := htmltest.Attr(anchors[0], "data-tab-content-id")
	ha.True(ok, "first link should carry data-tab-content-id")
	ha.Equal("custom-pane", contentID)
	href, _ := htmltest.Attr(anchors[0], "href")
	ha.Equal("#custom-pane", href)

	_, ok = htmltest.Attr(anchors[1], "data-tab-content-id")
	ha.True(!ok, "second link should not carry data-tab-content-id")
}

func TestRenderSlugID(t *testing.T) {
	cfg := NewBuilder().Tabs(Item{Title: "My Tab", Content: "x"}).Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	htmltest.NewHTMLAssert(t, got).HasID("my-tab")
}

func TestRenderPillsVersusTabs(t *testing.T) {
	tabs, err := NewPanel().Render(NewBuilder().Tabs(twoItems()...).Build())
	if err != nil {
		t.Fatalf("Render tabs: %v", err)
	}
	pills, err := NewPanel().Render(NewBuilder().Pills(twoItems()...).Build())
	if err != nil {
		t.Fatalf("Render pills: %v", err)
	}

	for _, a := range htmltest.Parse(t, pills).All("a") {
		if v, _ := htmltest.Attr(a, "data-toggle"); v != "pill" {
			t.Errorf("Expected data-toggle pill, got %q", v)
		}
	}

	converted := strings.ReplaceAll(pills, "data-toggle='pill'", "data-toggle='tab'")
	converted = strings.Replace(converted, "nav-pills", "nav-tabs", 1)
	if converted != tabs {
		t.Errorf("Pills and tabs differ beyond style\n tabs: %s\npills: %s", tabs, pills)
	}
}

func TestRenderParentID(t *testing.T) {
	urls, err := urlfmt.New("https://example.com")
	if err != nil {
		t.Fatalf("urlfmt.New: %v", err)
	}
	panel := NewPanel(WithURLFormatter(urls))

	cfg := NewBuilder().
		Tabs(Item{
			Title:   "Orders",
			Content: "...",
			Data:    map[string]string{"data-action": "customers/%s/orders", "data-remote": "true"},
		}).
		WithParentID("c-7").
		Build()

	got, err := panel.Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	ha := htmltest.NewHTMLAssert(t, got)
	hidden := ha.HasID("tab-parent_id")
	if v, _ := htmltest.Attr(hidden, "value"); v != "c-7" {
		t.Errorf("Expected hidden parent id c-7, got %q", v)
	}

	a := ha.Doc.All("a")[0]
	action, _ := htmltest.Attr(a, "data-action")
	ha.Equal("https://example.com/customers/c-7/orders", action)
	remote, _ := htmltest.Attr(a, "data-remote")
	ha.Equal("true", remote)

	if cfg.Items[0].Data["data-action"] != "customers/%s/orders" {
		t.Error("Render modified the caller's data map")
	}
}

func TestRenderActionWithoutParentID(t *testing.T) {
	cfg := NewBuilder().Tabs(Item{
		Title:   "Orders",
		Content: "...",
		Data:    map[string]string{"action": "orders/%s"},
	}).Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	a := htmltest.Parse(t, got).All("a")[0]
	if v, _ := htmltest.Attr(a, "action"); v != "orders/%s" {
		t.Errorf("Action should pass through untouched without a parent id, got %q", v)
	}
}

func TestRenderDataOverridesGenerated(t *testing.T) {
	cfg := NewBuilder().Tabs(Item{
		Title:   "One",
		Content: "x",
		Data:    map[string]string{"role": "button", "data-toggle": "collapse"},
	}).Build()

	links, err := NewPanel().NavLinks(cfg)
	if err != nil {
		t.Fatalf("NavLinks: %v", err)
	}
	role, _ := links[0].Attributes.Get("role")
	toggle, _ := links[0].Attributes.Get("data-toggle")
	if role != "button" || toggle != "collapse" {
		t.Errorf("Expected data entries to win, got role=%q data-toggle=%q", role, toggle)
	}
}

func TestRenderGeneratedOverridesPaneAttributes(t *testing.T) {
	cfg := NewBuilder().Tabs(Item{
		Title:      "One",
		Content:    "x",
		Attributes: map[string]string{"id": "ignored", "class": "custom", "data-x": "1"},
	}).Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	ha := htmltest.NewHTMLAssert(t, got)
	pane := ha.HasID("one")
	if ha.Doc.ByID("ignored") != nil {
		t.Error("Generated id should replace the explicit id")
	}
	ha.Equal([]string{"tab-pane", "active"}, htmltest.Classes(pane))
	v, _ := htmltest.Attr(pane, "data-x")
	ha.Equal("1", v)
}

func TestRenderEmpty(t *testing.T) {
	got, err := NewPanel().Render(NewBuilder().Build())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "<ul class='nav nav-tabs' role='tablist'></ul>" +
		"<div class='tab-content'><input type='hidden' id='tab-parent_id' value=''></div>"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderZeroConfigDefaultsToTabs(t *testing.T) {
	got, err := Render(Config{Items: twoItems()})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "data-toggle='tab'") {
		t.Errorf("Expected tab style by default, got %s", got)
	}
}

func TestRenderMissingField(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		index int
		field string
	}{
		{"no title", []Item{{Content: "x"}}, 0, "title"},
		{"second without title", []Item{{Title: "A", Content: "a"}, {Content: "b"}}, 1, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewPanel().RenderTo(&buf, NewBuilder().Tabs(tt.items...).Build())
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("Expected ErrMissingField, got %v", err)
			}

			var mf *MissingFieldError
			if !errors.As(err, &mf) {
				t.Fatalf("Expected *MissingFieldError, got %T", err)
			}
			if mf.Index != tt.index || mf.Field != tt.field {
				t.Errorf("Expected item %d field %s, got item %d field %s", tt.index, tt.field, mf.Index, mf.Field)
			}
			if buf.Len() != 0 {
				t.Errorf("Failed render wrote %q", buf.String())
			}
		})
	}
}

func TestRenderEmptyContentLoadedByAction(t *testing.T) {
	cfg := NewBuilder().Tabs(
		Item{Title: "Summary", Content: "<p>x</p>"},
		Item{Title: "Orders", Content: "", Data: map[string]string{"data-action": "orders/%s"}},
	).WithParentID("7").Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	ha := htmltest.NewHTMLAssert(t, got)
	pane := ha.HasID("orders")
	ha.Equal("", htmltest.Inner(pane))
	ha.HasClasses("orders", "tab-pane")
	ha.Contains(got, "data-action='/orders/7'")
}

func TestRenderCollaboratorErrors(t *testing.T) {
	navErr := errors.New("nav exploded")
	panel := NewPanel(WithNavRenderer(nav.RendererFunc(func(nav.Options, []nav.Link) (string, error) {
		return "", navErr
	})))

	out, err := panel.Render(NewBuilder().Tabs(twoItems()...).Build())
	if !errors.Is(err, navErr) {
		t.Errorf("Expected nav error to propagate, got %v", err)
	}
	if out != "" {
		t.Errorf("Expected no output on error, got %q", out)
	}

	cfg := NewBuilder().Tabs(Item{
		Title:      "One",
		Content:    "x",
		Attributes: map[string]string{"bad name": "v"},
	}).Build()
	_, err = NewPanel().Render(cfg)
	if !errors.Is(err, attrs.ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
}

func TestRenderNavCollaboratorContract(t *testing.T) {
	var gotOpts nav.Options
	var gotLinks []nav.Link
	panel := NewPanel(WithNavRenderer(nav.RendererFunc(func(opts nav.Options, links []nav.Link) (string, error) {
		gotOpts, gotLinks = opts, links
		return "<nav/>", nil
	})))

	cfg := NewBuilder().Pills(twoItems()...).Active(1).WithParentID("p1").Build()
	if _, err := panel.Render(cfg); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if gotOpts.Style != StylePill || gotOpts.AutoRoute {
		t.Errorf("Unexpected nav options %+v", gotOpts)
	}
	if role, _ := gotOpts.Attributes.Get("role"); role != "tablist" {
		t.Errorf("Expected role=tablist on nav root, got %q", role)
	}
	if len(gotLinks) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(gotLinks))
	}
	for i, l := range gotLinks {
		if l.ParentID != "p1" {
			t.Errorf("Link %d: expected parent id p1, got %q", i, l.ParentID)
		}
		if l.Active != (i == 1) {
			t.Errorf("Link %d: unexpected active=%v", i, l.Active)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	cfg := NewBuilder().Pills(twoItems()...).WithFade().WithParentID("x").Build()
	panel := NewPanel()

	first, err := panel.Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := panel.Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if first != second {
		t.Error("Render is not idempotent")
	}
}

func TestRenderEscapesParentID(t *testing.T) {
	cfg := NewBuilder().Tabs(twoItems()...).WithParentID(`"><script>`).Build()

	got, err := NewPanel().Render(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	ha := htmltest.NewHTMLAssert(t, got)
	ha.Count("script", 0)
}
