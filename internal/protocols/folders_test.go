package protocols

import (
	"testing"
	"time"

	"github.com/marbabud/domownik/internal/store"
)

func TestNormalizeClientName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jan Kowalski", "jan_kowalski"},
		{"Łukasz Żółć", "lukasz_zolc"},
		{"Lukasz Zolc", "lukasz_zolc"},
		{"  Anna--Maria  Nowak  ", "anna_maria_nowak"},
		{"Gąska-Śliwińska", "gaska_sliwinska"},
		{"ŁĄKA", "laka"},
		{"", "nieznany_klient"},
		{"!!!", "nieznany_klient"},
		{"日本語", "nieznany_klient"},
		{"piętro 2", "pietro_2"},
	}
	for _, c := range cases {
		if got := NormalizeClientName(c.in); got != c.want {
			t.Errorf("NormalizeClientName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeClientNameDiacriticEquivalence(t *testing.T) {
	// Accented and plain spellings of the same name must land in one bucket.
	pairs := [][2]string{
		{"Łukasz", "Lukasz"},
		{"Żaneta", "Zaneta"},
		{"Paweł Góra", "Pawel Gora"},
	}
	for _, p := range pairs {
		a, b := NormalizeClientName(p[0]), NormalizeClientName(p[1])
		if a != b {
			t.Errorf("%q -> %q but %q -> %q, expected equal", p[0], a, p[1], b)
		}
	}
}

func TestFolderKey(t *testing.T) {
	doc := store.Doc{
		"imie_nazwisko": "Jan Kowalski",
		"data_pomiary":  "2024-03-05T10:30:00Z",
	}
	key, _ := FolderKey(doc)
	if key != "jan_kowalski_05_03_2024" {
		t.Errorf("FolderKey = %q, want jan_kowalski_05_03_2024", key)
	}
}

func TestFolderKeyFallsBackToCreationDate(t *testing.T) {
	doc := store.Doc{
		"imie_nazwisko":   "Anna Nowak",
		"data_utworzenia": "2024-01-15T08:00:00Z",
	}
	key, _ := FolderKey(doc)
	if key != "anna_nowak_15_01_2024" {
		t.Errorf("FolderKey = %q, want anna_nowak_15_01_2024", key)
	}
}

func TestFolderKeyNoDates(t *testing.T) {
	key, ts := FolderKey(store.Doc{"imie_nazwisko": "Jan"})
	if key != "jan_00_00_0000" {
		t.Errorf("FolderKey = %q, want jan_00_00_0000", key)
	}
	if !ts.IsZero() {
		t.Errorf("Expected zero time, got %v", ts)
	}
}

func TestGroupIntoFolders(t *testing.T) {
	byKind := map[Kind][]store.Doc{
		KindDrzwi: {
			{"id": "d1", "imie_nazwisko": "Łukasz Wiśniewski", "data_pomiary": "2024-03-05T10:00:00Z"},
			{"id": "d2", "imie_nazwisko": "Lukasz Wisniewski", "data_pomiary": "2024-03-05T14:00:00Z"},
		},
		KindPodlogi: {
			{"id": "p1", "imie_nazwisko": "Anna Nowak", "data_pomiary": "2024-04-01T09:00:00Z"},
		},
	}

	folders := GroupIntoFolders(byKind)
	if len(folders) != 2 {
		t.Fatalf("Expected 2 folders, got %d", len(folders))
	}

	// Newest folder first
	if folders[0].Name != "anna_nowak_01_04_2024" {
		t.Errorf("First folder = %q, want anna_nowak_01_04_2024", folders[0].Name)
	}
	if folders[1].Name != "lukasz_wisniewski_05_03_2024" {
		t.Errorf("Second folder = %q, want lukasz_wisniewski_05_03_2024", folders[1].Name)
	}

	// Both spellings of the same client on the same day share a bucket
	if len(folders[1].Records) != 2 {
		t.Errorf("Expected 2 records in client folder, got %d", len(folders[1].Records))
	}

	// Records carry their source collection marker
	for _, rec := range folders[0].Records {
		if got := rec.GetString("__type"); got != "podlogi" {
			t.Errorf("__type = %q, want podlogi", got)
		}
	}

	want := folders[1].Newest
	if got := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC); !want.Equal(got) {
		t.Errorf("Folder newest = %v, want %v", want, got)
	}
}

func TestGroupIntoFoldersStable(t *testing.T) {
	byKind := map[Kind][]store.Doc{
		KindDrzwi: {
			{"id": "a", "imie_nazwisko": "Jan", "data_pomiary": "2024-05-01T10:00:00Z"},
			{"id": "b", "imie_nazwisko": "Ewa", "data_pomiary": "2024-05-02T10:00:00Z"},
		},
	}
	first := GroupIntoFolders(byKind)
	for i := 0; i < 20; i++ {
		again := GroupIntoFolders(byKind)
		if len(again) != len(first) {
			t.Fatalf("Folder count changed between runs")
		}
		for j := range again {
			if again[j].Name != first[j].Name {
				t.Fatalf("Folder order changed between runs: %q vs %q", again[j].Name, first[j].Name)
			}
		}
	}
}
