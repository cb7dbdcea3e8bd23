package expr

import "testing"

func TestParsePostfixAndPipeNodes(t *testing.T) {
	prog, err := Parse("user?.greet(a)[0].name | upper:1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pipe, ok := prog.Root.(*PipeExpr)
	if !ok || pipe.Name != "upper" || len(pipe.Args) != 1 {
		t.Fatalf("root = %#v, want pipe upper with one arg", prog.Root)
	}
	member, ok := pipe.X.(*MemberExpr)
	if !ok || member.Name != "name" || member.Safe {
		t.Fatalf("pipe input = %#v, want .name", pipe.X)
	}
	index, ok := member.Object.(*IndexExpr)
	if !ok {
		t.Fatalf("member object = %#v, want index", member.Object)
	}
	call, ok := index.Object.(*CallExpr)
	if !ok || len(call.Args) != 1 {
		t.Fatalf("index object = %#v, want call with one arg", index.Object)
	}
	greet, ok := call.Callee.(*MemberExpr)
	if !ok || greet.Name != "greet" || !greet.Safe {
		t.Fatalf("callee = %#v, want ?.greet", call.Callee)
	}
}

func TestAssignTargets(t *testing.T) {
	for _, src := range []string{"a = 1", "a.b = 1", "a[0] = 1"} {
		prog, err := Parse(src)
		if err != nil {
			t.Errorf("Parse(%q): %v", src, err)
			continue
		}
		if _, ok := prog.Root.(*Assign); !ok {
			t.Errorf("Parse(%q) root = %T, want *Assign", src, prog.Root)
		}
	}
	if _, err := Parse("f() = 1"); err == nil {
		t.Error("assigning to a call should fail")
	}
}
