package ir

// Children returns e's expression children as they appear in the tree:
// for a *Token, its Left and Right (either may be nil depending on
// arity); every other expression kind is a leaf.
func Children(e Expr) (left, right Expr) {
	if t, ok := e.(*Token); ok {
		return t.Left, t.Right
	}
	return nil, nil
}

// RewriteExpr applies fn bottom-up over e's tree: children are rewritten
// first (and spliced back into *Token.Left/Right), then fn is applied to
// the (possibly child-updated) node. fn may return e unchanged, or a
// replacement node (e.g. folding a *Token into a *ConstNumber).
func RewriteExpr(e Expr, fn func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	switch t := e.(type) {
	case *Token:
		if t.Left != nil {
			t.Left = RewriteExpr(t.Left, fn)
		}
		if t.Right != nil {
			t.Right = RewriteExpr(t.Right, fn)
		}
	case *Pair:
		if t.A != nil {
			t.A = RewriteExpr(t.A, fn)
		}
		if t.B != nil {
			t.B = RewriteExpr(t.B, fn)
		}
	}
	return fn(e)
}

// WalkStatements calls fn for every *Statement reachable from head, in
// chain order.
func WalkStatements(head ChainNode, fn func(*Statement)) {
	for n := head; n != nil; n = Next(n) {
		if s, ok := n.(*Statement); ok {
			fn(s)
		}
	}
}

// RewriteProgramExprs applies RewriteExpr to every statement's Args in
// the chain starting at head.
func RewriteProgramExprs(head ChainNode, fn func(Expr) Expr) {
	WalkStatements(head, func(s *Statement) {
		if s.Args != nil {
			s.Args = RewriteExpr(s.Args, fn)
		}
	})
}
