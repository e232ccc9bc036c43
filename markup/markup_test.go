package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `
<html>
<body>
<div id="outer">
  <ul id="list">
    <li class="item first"><p class="name">One</p><img src="1.png" title="First image"></li>
    <li class="item"><p class="name">Two <b>bold</b> </p><img src="2.png"></li>
    <li class="other"><p class="name">Three</p></li>
  </ul>
  <span class="dup" id="dup"></span>
  <span class="dup" id="dup"></span>
</div>
</body>
</html>`

func parsePage(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestFindByID(t *testing.T) {
	doc := parsePage(t)

	list, ok := doc.FindByID("list")
	require.True(t, ok)
	assert.Equal(t, "ul", list.Tag())

	_, ok = doc.FindByID("missing")
	assert.False(t, ok)

	// duplicated ids are ambiguous
	_, ok = doc.FindByID("dup")
	assert.False(t, ok)

	_, ok = doc.FindByID("x' or '1'='1")
	assert.False(t, ok)
}

func TestFindAllDocumentOrder(t *testing.T) {
	doc := parsePage(t)
	list, ok := doc.FindByID("list")
	require.True(t, ok)

	items := list.FindAll(HasClass("item"))
	require.Len(t, items, 2)

	names := list.FindAll(HasClass("name"))
	require.Len(t, names, 3)
	assert.Equal(t, "One", names[0].Text())
	assert.Equal(t, "Two bold", names[1].Text())
	assert.Equal(t, "Three", names[2].Text())
}

func TestFindFirstAndAttr(t *testing.T) {
	doc := parsePage(t)
	list, _ := doc.FindByID("list")
	items := list.FindAll(HasClass("item"))
	require.Len(t, items, 2)

	img, ok := items[0].FindFirst(HasTag("img"))
	require.True(t, ok)
	title, ok := img.Attr("title")
	require.True(t, ok)
	assert.Equal(t, "First image", title)

	img, ok = items[1].FindFirst(HasTag("img"))
	require.True(t, ok)
	_, ok = img.Attr("title")
	assert.False(t, ok)

	_, ok = items[1].FindFirst(HasTag("table"))
	assert.False(t, ok)
}

func TestSelector(t *testing.T) {
	doc := parsePage(t)

	sel, err := Selector("li.item.first > p")
	require.NoError(t, err)
	found := doc.Root().FindAll(sel)
	require.Len(t, found, 1)
	assert.Equal(t, "One", found[0].Text())

	_, err = Selector("li[")
	assert.Error(t, err)
}

func TestZeroNode(t *testing.T) {
	var n Node
	assert.False(t, n.Valid())
	assert.Equal(t, "", n.Tag())
	assert.Equal(t, "", n.Text())
	assert.Empty(t, n.FindAll(HasTag("p")))
	_, ok := n.Attr("id")
	assert.False(t, ok)
}
