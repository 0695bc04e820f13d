package images

import (
	"slices"
	"testing"
)

func TestIsEphemeral(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"blob:http://localhost:5173/4b1c7d0e-0000-4000-8000-000000000000", true},
		{"blob:", true},
		{"/uploads/1700000000000-photo.jpg", false},
		{"https://images.unsplash.com/photo-1?w=400", false},
		{"https://example.com/blob:abc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsEphemeral(tt.ref); got != tt.want {
			t.Errorf("IsEphemeral(%q) = %v, ожидалось %v", tt.ref, got, tt.want)
		}
	}
}

func TestStripEphemeral(t *testing.T) {
	in := []string{"/uploads/a.jpg", "blob:http://x/1", "https://e.com/b.jpg", "blob:http://x/2"}
	got := StripEphemeral(in)
	want := []string{"/uploads/a.jpg", "https://e.com/b.jpg"}
	if !slices.Equal(got, want) {
		t.Errorf("StripEphemeral() = %v, ожидалось %v", got, want)
	}
	// Исходный срез не изменяется
	if len(in) != 4 || in[1] != "blob:http://x/1" {
		t.Errorf("исходный срез изменён: %v", in)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]string
		want  []string
	}{
		{
			name:  "пустые списки",
			lists: nil,
			want:  []string{},
		},
		{
			name:  "без пересечений — конкатенация",
			lists: [][]string{{"a", "b"}, {"c"}},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "дубликат между списками — позиция первого появления",
			lists: [][]string{{"a", "b"}, {"c", "a"}},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "дубликаты внутри одного списка",
			lists: [][]string{{"a", "a", "b", "a"}},
			want:  []string{"a", "b"},
		},
		{
			name:  "пустые строки отбрасываются",
			lists: [][]string{{"", "a"}, {""}},
			want:  []string{"a"},
		},
		{
			name:  "только новые",
			lists: [][]string{nil, {"/uploads/x.jpg", "/uploads/y.jpg"}},
			want:  []string{"/uploads/x.jpg", "/uploads/y.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.lists...)
			if got == nil {
				t.Fatal("Merge() вернул nil")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Merge() = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}

// TestMerge_SameReferenceInBoth проверяет, что ссылка, переданная и в сохраняемых,
// и в новых изображениях, встречается ровно один раз.
func TestMerge_SameReferenceInBoth(t *testing.T) {
	retained := []string{"https://e.com/1.jpg", "/uploads/dup.jpg"}
	uploaded := []string{"/uploads/dup.jpg", "/uploads/new.jpg"}

	got := Merge(retained, uploaded)

	count := 0
	for _, ref := range got {
		if ref == "/uploads/dup.jpg" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("/uploads/dup.jpg встречается %d раз, ожидался 1: %v", count, got)
	}
	if idx := slices.Index(got, "/uploads/dup.jpg"); idx != 1 {
		t.Errorf("позиция дубликата = %d, ожидалась 1", idx)
	}
}
