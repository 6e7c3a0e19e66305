package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecode_TypedData(t *testing.T) {
	t.Parallel()

	raw := &Raw{Code: CodeOK, Data: json.RawMessage(`{"list":[{"id":1,"name":"Skyrim"}],"total":1}`)}

	env, err := Decode[List[Game]](raw)
	require.NoError(t, err)
	require.True(t, env.OK())
	require.Len(t, env.Data.List, 1)
	require.Equal(t, "Skyrim", env.Data.List[0].Name)
	require.EqualValues(t, 1, env.Data.Total)
}

func TestDecode_NullData_ZeroValue(t *testing.T) {
	t.Parallel()

	for _, data := range []json.RawMessage{nil, json.RawMessage("null")} {
		env, err := Decode[*User](&Raw{Code: CodeDataNotExist, Data: data, Error: "not found"})
		require.NoError(t, err)
		require.Nil(t, env.Data)
		require.False(t, env.OK())
		require.Equal(t, "not found", env.Error)
	}
}

func TestDecode_TypeMismatch(t *testing.T) {
	t.Parallel()

	_, err := Decode[bool](&Raw{Data: json.RawMessage(`"yes"`)})
	require.Error(t, err)
}

// Бэкенд отдаёт у файлов поля gorm.Model с заглавными именами (ID, CreatedAt).
func TestStorageFile_UppercaseKeys(t *testing.T) {
	t.Parallel()

	var f StorageFile
	require.NoError(t, json.Unmarshal([]byte(`{"ID":7,"url":"http://x/y.png","file_name":"y.png"}`), &f))
	require.EqualValues(t, 7, f.ID)
	require.Equal(t, "y.png", f.FileName)
}

func TestUserWithMods_Flattened(t *testing.T) {
	t.Parallel()

	var u UserWithMods
	payload := `{"id":3,"user_name":"neo","role":"user","mod":[{"id":10,"name":"HD Textures"}]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &u))
	require.Equal(t, "neo", u.UserName)
	require.Len(t, u.Mods, 1)
	require.Equal(t, "HD Textures", u.Mods[0].Name)
}

func TestPaging_Normalize(t *testing.T) {
	t.Parallel()

	p := Paging{Page: -3, PageSize: 0, Order: "sideways"}.Normalize()
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPageSize, p.PageSize)
	require.Equal(t, OrderDesc, p.Order)
}

func TestPaging_TotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		size  int
		total int64
		want  int
	}{
		{"empty", 10, 0, 1},
		{"exact", 10, 30, 3},
		{"remainder", 10, 31, 4},
		{"default_size", 0, 11, 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Paging{PageSize: tt.size}.TotalPages(tt.total))
		})
	}
}

func TestPaging_NextPrev(t *testing.T) {
	t.Parallel()

	p := Paging{Page: 1, PageSize: 10}

	next, ok := p.Next(25)
	require.True(t, ok)
	require.Equal(t, 2, next.Page)

	next, ok = next.Next(25)
	require.True(t, ok)
	require.Equal(t, 3, next.Page)

	_, ok = next.Next(25)
	require.False(t, ok, "third page is the last one")

	prev, ok := next.Prev()
	require.True(t, ok)
	require.Equal(t, 2, prev.Page)

	_, ok = Paging{Page: 1}.Prev()
	require.False(t, ok)
}

func TestPaging_SortBy_Toggles(t *testing.T) {
	t.Parallel()

	p := Paging{Page: 4}.SortBy("likes")
	require.Equal(t, "likes", p.Sort)
	require.Equal(t, OrderAsc, p.Order)
	require.Equal(t, 1, p.Page)

	p = p.SortBy("likes")
	require.Equal(t, OrderDesc, p.Order)

	p = p.SortBy("likes")
	require.Equal(t, OrderAsc, p.Order)

	p = p.SortBy("created_at")
	require.Equal(t, "created_at", p.Sort)
	require.Equal(t, OrderAsc, p.Order)
}

func TestModQuery_Values(t *testing.T) {
	t.Parallel()

	q := ModQuery{
		Paging:   Paging{Page: 2, PageSize: 20, Sort: "likes", Order: OrderDesc},
		Category: []string{"graphics", "", "audio"},
		GameID:   5,
		Name:     "hd",
	}

	v := q.Values()
	require.Equal(t, "2", v.Get("page"))
	require.Equal(t, "20", v.Get("page_size"))
	require.Equal(t, "likes", v.Get("sort"))
	require.Equal(t, "desc", v.Get("order"))
	require.Equal(t, []string{"graphics", "audio"}, v["category"])
	require.Equal(t, "5", v.Get("gameID"))
	require.Equal(t, "hd", v.Get("name"))
	require.NotContains(t, v, "userID")
	require.NotContains(t, v, "status")
}

func TestReportQuery_Values_TimeRange(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("MSK", 3*3600))
	q := ReportQuery{Type: ReportTypeMod, Status: ReportPending, StartTime: &from}

	v := q.Values()
	require.Equal(t, "mod", v.Get("type"))
	require.Equal(t, "pending", v.Get("status"))
	require.Equal(t, "2025-01-02T00:04:05Z", v.Get("startTime"))
	require.Empty(t, v.Get("endTime"))
}

func TestEmptyQueries_NoParams(t *testing.T) {
	t.Parallel()

	require.Empty(t, GameQuery{}.Values())
	require.Empty(t, UserQuery{}.Values())
	require.Empty(t, CategoryQuery{}.Values())
	require.Empty(t, ModFavoriteQuery{}.Values())
	require.Empty(t, CommentQuery{}.Values())
}
