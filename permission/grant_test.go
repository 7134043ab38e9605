package permission

import "testing"

func TestGrantMatchesRoleScoping(t *testing.T) {
	scoped := Grant{Resource: "Articles", Action: "Write", Scope: "Own", Active: true}

	if !scoped.MatchesRole("Articles", "Write", "Own") {
		t.Fatal("expected scoped role grant to match its own scope")
	}
	if scoped.MatchesRole("Articles", "Write", "Team") {
		t.Fatal("expected scoped role grant to reject a different scope")
	}
	if scoped.MatchesRole("Articles", "Write", "") {
		t.Fatal("expected scoped role grant to reject an unscoped request")
	}

	wildcard := Grant{Resource: "Articles", Action: "Write", Active: true}
	if !wildcard.MatchesRole("Articles", "Write", "Team") {
		t.Fatal("expected unscoped role grant to match any scope")
	}
	if !wildcard.MatchesRole("Articles", "Write", "") {
		t.Fatal("expected unscoped role grant to match an unscoped request")
	}
}

func TestGrantMatchesGroupIsWildcardOnEitherSide(t *testing.T) {
	scoped := Grant{Resource: "Articles", Action: "Write", Scope: "Own", Active: true}

	// The request-side wildcard is the behavior that differs from role
	// matching: an unscoped request matches a scoped group grant.
	if !scoped.MatchesGroup("Articles", "Write", "") {
		t.Fatal("expected scoped group grant to match an unscoped request")
	}
	if scoped.MatchesRole("Articles", "Write", "") {
		t.Fatal("role matching must not share the group-side wildcard")
	}

	if scoped.MatchesGroup("Articles", "Write", "Team") {
		t.Fatal("expected scoped group grant to reject a different explicit scope")
	}
	if !scoped.MatchesGroup("Articles", "Write", "Own") {
		t.Fatal("expected scoped group grant to match its own scope")
	}
}

func TestGrantMatchingIsCaseInsensitive(t *testing.T) {
	g := Grant{Resource: "Articles", Action: "Write", Scope: "Own", Active: true}

	if !g.MatchesRole("articles", "WRITE", "own") {
		t.Fatal("expected case-insensitive resource, action, and scope matching")
	}
	if !g.MatchesGroup("ARTICLES", "write", "OWN") {
		t.Fatal("expected case-insensitive group matching")
	}
}

func TestInactiveGrantNeverMatches(t *testing.T) {
	g := Grant{Resource: "Articles", Action: "Write", Active: false}

	if g.MatchesRole("Articles", "Write", "") {
		t.Fatal("inactive grant matched under role rules")
	}
	if g.MatchesGroup("Articles", "Write", "") {
		t.Fatal("inactive grant matched under group rules")
	}
}
