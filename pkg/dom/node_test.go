package dom

import (
	"strings"
	"testing"
)

func TestTreeOperations(t *testing.T) {
	doc := NewDocument()
	ul := doc.CreateElement("ul")
	a := doc.CreateElement("li")
	b := doc.CreateElement("li")
	c := doc.CreateElement("li")

	ul.AppendChild(a)
	ul.AppendChild(c)
	if err := ul.InsertBefore(b, c); err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}

	kids := ul.ChildNodes()
	if len(kids) != 3 || kids[0] != a || kids[1] != b || kids[2] != c {
		t.Fatalf("unexpected order: %v", kids)
	}
	if b.NextSibling() != c || b.PreviousSibling() != a {
		t.Error("sibling links are wrong")
	}

	ul.RemoveChild(b)
	if b.Parent() != nil || len(ul.ChildNodes()) != 2 {
		t.Error("RemoveChild did not detach")
	}

	if err := a.InsertBefore(ul, nil); err != ErrHierarchy {
		t.Errorf("inserting an ancestor should fail, got %v", err)
	}
}

func TestAppendFragmentMovesChildren(t *testing.T) {
	doc := NewDocument()
	frag := doc.CreateFragment()
	frag.AppendChild(doc.CreateElement("p"))
	frag.AppendChild(doc.CreateTextNode("x"))

	div := doc.CreateElement("div")
	div.AppendChild(frag)

	if len(frag.ChildNodes()) != 0 {
		t.Error("fragment should be emptied")
	}
	if got := InnerHTML(div); got != "<p></p>x" {
		t.Errorf("InnerHTML = %q", got)
	}
}

func TestCloneNode(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	div.SetAttribute("id", "a")
	div.AppendChild(doc.CreateTextNode("hi"))
	_ = div.SetProperty("custom", 1)
	div.AddEventListener("click", func(*Event) {})

	shallow := div.CloneNode(false)
	if len(shallow.ChildNodes()) != 0 {
		t.Error("shallow clone should have no children")
	}

	deep := div.CloneNode(true)
	if OuterHTML(deep) != `<div id="a">hi</div>` {
		t.Errorf("deep clone = %q", OuterHTML(deep))
	}
	if _, ok := deep.Property("custom"); ok {
		t.Error("properties should not be cloned")
	}
	if deep.ListenerCount("click") != 0 {
		t.Error("listeners should not be cloned")
	}
}

func TestAttributesAndProperties(t *testing.T) {
	doc := NewDocument()
	input := doc.CreateElement("input")

	input.SetAttribute("Value", "1")
	if v, _ := input.GetAttribute("value"); v != "1" {
		t.Errorf("attribute names should be case-insensitive, got %q", v)
	}

	_ = input.SetProperty("disabled", true)
	if !input.HasAttribute("disabled") {
		t.Error("disabled should reflect to attribute")
	}
	_ = input.SetProperty("disabled", false)
	if input.HasAttribute("disabled") {
		t.Error("disabled=false should remove attribute")
	}

	_ = input.SetProperty("className", "a b")
	if !input.ClassList().Contains("b") {
		t.Error("className should reflect to class")
	}

	p := doc.CreateElement("p")
	_ = p.SetProperty("textContent", "<b>")
	if InnerHTML(p) != "&lt;b&gt;" {
		t.Errorf("textContent should be escaped, got %q", InnerHTML(p))
	}
	_ = p.SetProperty("innerHTML", "<b>x</b>")
	if InnerHTML(p) != "<b>x</b>" {
		t.Errorf("innerHTML = %q", InnerHTML(p))
	}
	if v, _ := p.Property("textContent"); v != "x" {
		t.Errorf("textContent = %v", v)
	}
}

func TestClassList(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")
	cl := el.ClassList()

	cl.Add("a", "b", "a")
	cl.Toggle("c", true)
	cl.Toggle("a", false)
	if v, _ := el.GetAttribute("class"); v != "b c" {
		t.Errorf("class = %q", v)
	}
	cl.Remove("b", "c")
	if el.HasAttribute("class") {
		t.Error("empty class list should remove attribute")
	}
}

func TestStyle(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")
	el.SetAttribute("style", "color: red")

	st := el.Style()
	if st.GetPropertyValue("color") != "red" {
		t.Fatalf("parsed color = %q", st.GetPropertyValue("color"))
	}
	st.SetProperty("--gap", "4px")
	if v, _ := el.GetAttribute("style"); v != "color: red; --gap: 4px;" {
		t.Errorf("style = %q", v)
	}
	st.RemoveProperty("color")
	st.RemoveProperty("--gap")
	if el.HasAttribute("style") {
		t.Error("empty style should remove attribute")
	}

	el.SetAttribute("style", "margin: 0")
	if st.GetPropertyValue("margin") != "0" {
		t.Error("style should follow attribute changes")
	}
}

func TestTextContent(t *testing.T) {
	doc := NewDocument()
	frag, err := ParseHTML(doc, "<p>a<b>b</b><!--c-->d</p>")
	if err != nil {
		t.Fatal(err)
	}
	if got := frag.TextContent(); got != "abd" {
		t.Errorf("TextContent = %q", got)
	}
	if got := len(frag.Comments()); got != 1 {
		t.Errorf("expected 1 comment, got %d", got)
	}
}

func TestParseSelectStripsContainers(t *testing.T) {
	doc := NewDocument()
	frag, err := ParseHTML(doc, `<select><ng-container><option>a</option></ng-container><!--F:x:xs--><option>b</option><!--/F--></select>`)
	if err != nil {
		t.Fatal(err)
	}
	got := OuterHTML(frag)
	if strings.Contains(got, "ng-container") {
		t.Errorf("select should drop container elements, got %q", got)
	}
	if !strings.Contains(got, "<!--F:x:xs-->") {
		t.Errorf("comment markers should survive, got %q", got)
	}
}

func TestDocumentHTML(t *testing.T) {
	doc := NewDocument()
	style := doc.CreateElement("style")
	style.AppendChild(doc.CreateTextNode("a > b {}"))
	doc.Head().AppendChild(style)

	got := doc.HTML()
	want := "<!DOCTYPE html><html><head><style>a > b {}</style></head><body></body></html>"
	if got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
}
