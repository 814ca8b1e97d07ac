package scoring

import (
	"testing"

	"github.com/enemsprint/sprint-backend/internal/model"
)

func accuracyRow(subject string, total, correct int) model.SubjectAccuracy {
	return model.SubjectAccuracy{
		Subject:  subject,
		Total:    total,
		Correct:  correct,
		Wrong:    total - correct,
		Accuracy: ScorePercent(correct, total),
	}
}

func TestNormalizeSubjectLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Matematica", "Matematica"},
		{"  Matematica  ", "Matematica"},
		{"", "Sem categoria"},
		{"   ", "Sem categoria"},
		{model.NoSubjectLabel, "Sem categoria"},
		{"sem materia", "Sem categoria"},
	}

	for _, tc := range tests {
		if got := NormalizeSubjectLabel(tc.raw); got != tc.want {
			t.Errorf("NormalizeSubjectLabel(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSubjectAccuracies_SortAndNormalize(t *testing.T) {
	stats := []model.SubjectStats{
		{Subject: "Humanas", Total: 10, Correct: 5, Wrong: 5},
		{Subject: model.NoSubjectLabel, Total: 2, Correct: 2},
		{Subject: "Matematica", Total: 4, Correct: 2, Wrong: 2},
	}

	rows := SubjectAccuracies(stats)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	// 100% first, then the two 50% rows with the larger subject ahead.
	if rows[0].Subject != "Sem categoria" || rows[0].Accuracy != 100 {
		t.Fatalf("rows[0] = %+v, want normalized sentinel at 100%%", rows[0])
	}
	if rows[1].Subject != "Humanas" || rows[2].Subject != "Matematica" {
		t.Fatalf("accuracy tie must rank larger subject first, got %q then %q",
			rows[1].Subject, rows[2].Subject)
	}
}

func TestRank_RequiresTwoEligibleSubjects(t *testing.T) {
	tests := []struct {
		name string
		rows []model.SubjectAccuracy
		want bool
	}{
		{
			name: "no rows",
			rows: nil,
			want: false,
		},
		{
			name: "single eligible subject",
			rows: []model.SubjectAccuracy{accuracyRow("Matematica", 5, 3)},
			want: false,
		},
		{
			name: "small subjects filtered out",
			rows: []model.SubjectAccuracy{
				accuracyRow("Matematica", 5, 3),
				accuracyRow("Humanas", 1, 1),
				accuracyRow("Linguagens", 2, 0),
			},
			want: false,
		},
		{
			name: "two eligible subjects",
			rows: []model.SubjectAccuracy{
				accuracyRow("Matematica", 5, 3),
				accuracyRow("Humanas", 4, 1),
			},
			want: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ranking := Rank(tc.rows)
			if ranking.HasData != tc.want {
				t.Fatalf("HasData = %v, want %v", ranking.HasData, tc.want)
			}
			if !tc.want && (len(ranking.Strengths) != 0 || len(ranking.Weaknesses) != 0) {
				t.Fatal("ranking without data must carry empty lists")
			}
		})
	}
}

func TestRank_ExcludesSmallSubjects(t *testing.T) {
	rows := []model.SubjectAccuracy{
		accuracyRow("Matematica", 5, 4),
		accuracyRow("Artes", 1, 1),
		accuracyRow("Linguagens", 4, 2),
	}

	ranking := Rank(rows)
	if !ranking.HasData {
		t.Fatal("two subjects qualify, ranking must have data")
	}
	for _, list := range [][]model.SubjectAccuracy{ranking.Strengths, ranking.Weaknesses} {
		if len(list) != 2 {
			t.Fatalf("list size = %d, want the 2 qualifying subjects", len(list))
		}
		for _, row := range list {
			if row.Subject == "Artes" {
				t.Fatal("a subject below the question threshold must not be ranked")
			}
		}
	}
}

func TestRank_StrengthsAndWeaknesses(t *testing.T) {
	rows := []model.SubjectAccuracy{
		accuracyRow("A", 10, 9), // 90
		accuracyRow("B", 10, 7), // 70
		accuracyRow("C", 10, 5), // 50
		accuracyRow("D", 10, 3), // 30
		accuracyRow("E", 10, 1), // 10
	}

	ranking := Rank(rows)
	if !ranking.HasData {
		t.Fatal("expected ranking data")
	}
	if len(ranking.Strengths) != 3 || len(ranking.Weaknesses) != 3 {
		t.Fatalf("list sizes = %d/%d, want 3/3",
			len(ranking.Strengths), len(ranking.Weaknesses))
	}

	wantStrengths := []string{"A", "B", "C"}
	wantWeaknesses := []string{"E", "D", "C"}
	for i, want := range wantStrengths {
		if ranking.Strengths[i].Subject != want {
			t.Errorf("strengths[%d] = %q, want %q", i, ranking.Strengths[i].Subject, want)
		}
	}
	for i, want := range wantWeaknesses {
		if ranking.Weaknesses[i].Subject != want {
			t.Errorf("weaknesses[%d] = %q, want %q", i, ranking.Weaknesses[i].Subject, want)
		}
	}
}

func TestRank_TieBrokenByTotal(t *testing.T) {
	rows := []model.SubjectAccuracy{
		accuracyRow("Small", 4, 2), // 50% over 4
		accuracyRow("Large", 8, 4), // 50% over 8
	}

	ranking := Rank(rows)
	if ranking.Strengths[0].Subject != "Large" {
		t.Fatalf("strengths tie must prefer larger subject, got %q", ranking.Strengths[0].Subject)
	}
	if ranking.Weaknesses[0].Subject != "Large" {
		t.Fatalf("weaknesses tie must prefer larger subject, got %q", ranking.Weaknesses[0].Subject)
	}
}
