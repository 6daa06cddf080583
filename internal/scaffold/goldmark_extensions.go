// internal/scaffold/goldmark_extensions.go
package scaffold

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// mdLinkTransformer rewrites links between usage notes so that the HTML
// renditions point at each other: "../raw/README.md" becomes
// "../raw/README.html".
type mdLinkTransformer struct {
}

func newMDLinkTransformer() parser.ASTTransformer {
	return &mdLinkTransformer{}
}

// Transform walks the document and patches every link ending in ".md".
func (t *mdLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := link.Destination
		if bytes.HasSuffix(dest, []byte(".md")) {
			// Copy: Destination may alias the source buffer.
			newDest := make([]byte, 0, len(dest)+2)
			newDest = append(newDest, bytes.TrimSuffix(dest, []byte(".md"))...)
			link.Destination = append(newDest, ".html"...)
		}
		return ast.WalkContinue, nil
	})
}
