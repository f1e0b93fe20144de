package router

import (
	"testing"

	"github.com/vango-dev/fsroutes/pkg/segment"
)

func TestTreeNodeAddChild(t *testing.T) {
	root := newTreeNode()

	child1 := root.addChild("news")
	if child1 == nil {
		t.Fatal("addChild returned nil")
	}
	if child1.segment != "news" {
		t.Errorf("segment = %q, want %q", child1.segment, "news")
	}
	if child1.parsed == nil || child1.parsed.Kind != segment.Static {
		t.Errorf("parsed = %+v, want static", child1.parsed)
	}

	// Adding same child returns existing
	child2 := root.addChild("news")
	if child1 != child2 {
		t.Error("addChild should return existing child")
	}
	if len(root.children) != 1 {
		t.Errorf("len(children) = %d, want 1", len(root.children))
	}

	param := child1.addChild("[id]")
	if param.parsed.Kind != segment.Dynamic {
		t.Errorf("Kind = %v, want dynamic", param.parsed.Kind)
	}
	if len(param.rawSegments) != 2 || param.rawSegments[0] != "news" || param.rawSegments[1] != "[id]" {
		t.Errorf("rawSegments = %q", param.rawSegments)
	}
}

func TestTreeNodeRawSegmentsDoNotAlias(t *testing.T) {
	root := newTreeNode()
	parent := root.addChild("a")
	b := parent.addChild("b")
	c := parent.addChild("c")

	if b.rawSegments[1] != "b" || c.rawSegments[1] != "c" {
		t.Errorf("siblings share raw segment storage: %q %q", b.rawSegments, c.rawSegments)
	}
}

func TestTreeNodeInsert(t *testing.T) {
	root := newTreeNode()

	if root.insert([]string{"news", "[id]"}, "article") {
		t.Error("first insert should not report a replacement")
	}

	news := root.children["news"]
	if news == nil {
		t.Fatal("news node not created")
	}
	if news.hasComponent() {
		t.Error("intermediate directory should have no component")
	}
	if got := news.children["[id]"].component; got != "article" {
		t.Errorf("component = %v, want article", got)
	}

	if !root.insert([]string{"news", "[id]"}, "article2") {
		t.Error("second insert should report a replacement")
	}
	if got := news.children["[id]"].component; got != "article2" {
		t.Errorf("component = %v, want article2 (last write wins)", got)
	}
}

func TestTreeNodeInsertEmptyAssignsRoot(t *testing.T) {
	root := newTreeNode()
	root.insert(nil, "home")

	if root.component != "home" {
		t.Errorf("root component = %v, want home", root.component)
	}
	if len(root.children) != 0 {
		t.Errorf("len(children) = %d, want 0", len(root.children))
	}
}

func TestTreeNodeAttachPoint(t *testing.T) {
	root := newTreeNode()
	if root.isAttachPoint() {
		t.Error("root without component is not an attachment point")
	}
	root.component = "home"
	if !root.isAttachPoint() {
		t.Error("root with component is an attachment point")
	}

	param := root.addChild("[id]")
	param.component = "x"
	if param.isAttachPoint() {
		t.Error("dynamic node is never an attachment point")
	}

	static := root.addChild("about")
	if static.isAttachPoint() {
		t.Error("static node without component is not an attachment point")
	}
	static.component = "about"
	if !static.isAttachPoint() {
		t.Error("static node with component is an attachment point")
	}
}

func TestSortedChildren(t *testing.T) {
	root := newTreeNode()
	for _, seg := range []string{"zeta", "[id]", "alpha", "Beta", "[...rest]"} {
		root.addChild(seg)
	}

	var got []string
	for _, child := range sortedChildren(root) {
		got = append(got, child.segment)
	}

	want := []string{"Beta", "[...rest]", "[id]", "alpha", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sortedChildren[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
