package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("*").
		From("word_wars").
		Where(Eq("event_id", "ev-1"), Eq("status", "waiting")).
		OrderBy("created_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM word_wars WHERE event_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "ev-1" || args[1] != "waiting" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_ConditionalTransition(t *testing.T) {
	query, args, err := Update("word_wars").
		Set("status", "running").
		SetExpr("updated_at", "NOW()").
		Where(Eq("public_id", "ww-1"), Eq("status", "waiting")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE word_wars SET status = $1, updated_at = NOW() WHERE public_id = $2 AND status = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "running" || args[1] != "ww-1" || args[2] != "waiting" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderWithSuffix(t *testing.T) {
	query, args, err := InsertInto("word_war_participants").
		Columns("public_id", "user_id").
		Values("p1", "u1").
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO word_war_participants (public_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("word_war_participants").
		Where(Eq("word_war_public_id", "ww-1"), Eq("user_id", "u1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM word_war_participants WHERE word_war_public_id = $1 AND user_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("word_war_participants").ToSQL(); err == nil {
		t.Fatal("expected error for delete without conditions")
	}
}

func TestExprCondition(t *testing.T) {
	query, args, err := Update("word_war_participants").
		Set("words_in_round", 120).
		Where(
			Eq("user_id", "u1"),
			Expr("words_in_round = ?", 80),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE word_war_participants SET words_in_round = $1 WHERE user_id = $2 AND words_in_round = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != 80 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
