package match_test

import (
	"context"
	"testing"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/tree"
)

func TestZZDebugPython(t *testing.T) {
	py, err := language.New("python")
	if err != nil {
		t.Fatal(err)
	}

	pat, err := tree.Parse(context.Background(), py, []byte(py.PreProcessPattern("print($A)")))
	if err != nil {
		t.Fatal(err)
	}
	var dump func(n *tree.Node, depth int)
	dump = func(n *tree.Node, depth int) {
		t.Logf("%*s%s named=%v err=%v text=%q", depth*2, "", n.KindName(), n.IsNamed(), n.IsError(), n.Text())
		for _, c := range n.Children() {
			dump(c, depth+1)
		}
	}
	dump(pat.Node(), 0)
}
