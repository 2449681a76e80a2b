package query_test

import (
	"testing"

	"github.com/JaimeStill/quire/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "publications", "p").
		Project("id", "id").
		Project("title", "title").
		Project("description", "description").
		Project("authors", "authors").
		Project("category", "category").
		Project("is_published", "isPublished").
		Project("created_at", "createdAt")
}

func ptr(s string) *string { return &s }

func TestProjectionMapTable(t *testing.T) {
	p := testProjection()
	if got, want := p.Table(), "public.publications p"; got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
	if got := p.Alias(); got != "p" {
		t.Errorf("Alias() = %q, want %q", got, "p")
	}
}

func TestProjectionMapColumns(t *testing.T) {
	p := query.NewProjectionMap("public", "publications", "p").
		Project("id", "id").
		Project("title", "title")

	if got, want := p.Columns(), "p.id, p.title"; got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestProjectionMapJoin(t *testing.T) {
	p := query.NewProjectionMap("public", "publications", "p").
		Project("id", "id").
		Join("public", "users", "u", "LEFT JOIN", "u.id = p.created_by").
		Project("name", "creatorName")

	if got, want := p.Columns(), "p.id, u.name"; got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
	if got, want := p.Column("creatorName"), "u.name"; got != want {
		t.Errorf("Column(creatorName) = %q, want %q", got, want)
	}

	want := "public.publications p LEFT JOIN public.users u ON u.id = p.created_by"
	if got := p.From(); got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
	if got := p.Alias(); got != "p" {
		t.Errorf("Alias() after join = %q, want p", got)
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"mapped field", "title", "p.title"},
		{"mapped camel", "createdAt", "p.created_at"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}
}

func TestBuilderNoConditions(t *testing.T) {
	b := query.NewBuilder(testProjection())
	sql, args := b.BuildCount()

	if want := "SELECT COUNT(*) FROM public.publications p"; sql != want {
		t.Errorf("BuildCount() = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuilderWhereEquals(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantSQL  string
		wantArgs int
	}{
		{"string value", "book", "SELECT COUNT(*) FROM public.publications p WHERE p.category = $1", 1},
		{"nil value skipped", nil, "SELECT COUNT(*) FROM public.publications p", 0},
		{"nil pointer skipped", (*string)(nil), "SELECT COUNT(*) FROM public.publications p", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := query.NewBuilder(testProjection()).
				WhereEquals("category", tt.value).
				BuildCount()

			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestBuilderWhereEqualsDereferencesPointer(t *testing.T) {
	_, args := query.NewBuilder(testProjection()).
		WhereEquals("category", ptr("book")).
		BuildCount()

	if len(args) != 1 || args[0] != "book" {
		t.Errorf("args = %v, want [book]", args)
	}
}

func TestBuilderWhereSearch(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).
		WhereEquals("isPublished", true).
		WhereSearch(ptr("Go"), query.Field("title"), query.Field("description"), query.Elements("authors")).
		BuildCount()

	want := "SELECT COUNT(*) FROM public.publications p WHERE p.is_published = $1 AND " +
		"(p.title ILIKE $2 OR p.description ILIKE $3 OR " +
		"EXISTS (SELECT 1 FROM unnest(p.authors) AS elem WHERE elem ILIKE $4))"

	if sql != want {
		t.Errorf("sql =\n%q\nwant\n%q", sql, want)
	}
	if len(args) != 4 {
		t.Fatalf("args = %d, want 4", len(args))
	}
	for i := 1; i < 4; i++ {
		if args[i] != "%Go%" {
			t.Errorf("args[%d] = %v, want %%Go%%", i, args[i])
		}
	}
}

func TestBuilderWhereSearchSkipped(t *testing.T) {
	tests := []struct {
		name   string
		search *string
	}{
		{"nil", nil},
		{"empty", ptr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := query.NewBuilder(testProjection()).
				WhereSearch(tt.search, query.Field("title")).
				BuildCount()

			if want := "SELECT COUNT(*) FROM public.publications p"; sql != want {
				t.Errorf("sql = %q, want %q", sql, want)
			}
			if len(args) != 0 {
				t.Errorf("args = %v, want none", args)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := query.EscapeLike(tt.in); got != tt.want {
				t.Errorf("EscapeLike(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuilderBuildPage(t *testing.T) {
	sql, args := query.NewBuilder(testProjection(), query.SortField{Field: "createdAt", Descending: true}).
		WhereEquals("category", "journal").
		BuildPage(3, 10)

	want := "SELECT p.id, p.title, p.description, p.authors, p.category, p.is_published, p.created_at " +
		"FROM public.publications p WHERE p.category = $1 ORDER BY p.created_at DESC LIMIT 10 OFFSET 20"

	if sql != want {
		t.Errorf("sql =\n%q\nwant\n%q", sql, want)
	}
	if len(args) != 1 || args[0] != "journal" {
		t.Errorf("args = %v, want [journal]", args)
	}
}

func TestBuilderBuildLimit(t *testing.T) {
	p := query.NewProjectionMap("public", "publications", "p").Project("id", "id").Project("created_at", "createdAt")
	sql, _ := query.NewBuilder(p, query.SortField{Field: "createdAt", Descending: true}).BuildLimit(5)

	want := "SELECT p.id, p.created_at FROM public.publications p ORDER BY p.created_at DESC LIMIT 5"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	p := query.NewProjectionMap("public", "publications", "p").Project("id", "id")
	sql, args := query.NewBuilder(p).BuildSingle("id", "abc")

	if want := "SELECT p.id FROM public.publications p WHERE p.id = $1"; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args = %v", args)
	}
}
