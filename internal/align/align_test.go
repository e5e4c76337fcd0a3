package align

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"contactmap/internal/config"
)

const ref = "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEV" // no W, no C

func newAligner() *Aligner { return New(config.Default().Scoring) }

func TestIdentical(t *testing.T) {
	res, err := newAligner().Align(ref, ref)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	want := []Range{{0, len(ref)}}
	if !reflect.DeepEqual(res.Ref, want) || !reflect.DeepEqual(res.Ext, want) {
		t.Fatalf("got ref=%v ext=%v", res.Ref, res.Ext)
	}
	if res.Score != float64(2*len(ref)) {
		t.Fatalf("score: got %v", res.Score)
	}
}

func TestCaseInsensitive(t *testing.T) {
	res, err := newAligner().Align("mktayiakqr", "MKTAYIAKQR")
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if res.Aligned() != 10 {
		t.Fatalf("aligned: got %d", res.Aligned())
	}
}

func TestMissingResiduesSplitBlocks(t *testing.T) {
	ext := ref[:10] + ref[15:]
	res, err := newAligner().Align(ref, ext)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	wantRef := []Range{{0, 10}, {15, len(ref)}}
	wantExt := []Range{{0, 10}, {10, len(ext)}}
	if !reflect.DeepEqual(res.Ref, wantRef) || !reflect.DeepEqual(res.Ext, wantExt) {
		t.Fatalf("got ref=%v ext=%v", res.Ref, res.Ext)
	}
	// 27 matches, one gap of length 5
	if want := 27*2 - 0.5 - 4*0.1; abs(res.Score-want) > 1e-9 {
		t.Fatalf("score: got %v want %v", res.Score, want)
	}
}

func TestLocalTrimsFlanks(t *testing.T) {
	ext := "WWW" + ref[5:25] + "WWW"
	res, err := newAligner().Align(ref, ext)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if !reflect.DeepEqual(res.Ref, []Range{{5, 25}}) || !reflect.DeepEqual(res.Ext, []Range{{3, 23}}) {
		t.Fatalf("got ref=%v ext=%v", res.Ref, res.Ext)
	}
}

func TestSubstitutionStaysInBlock(t *testing.T) {
	b := []byte(ref)
	b[12] = 'C'
	res, err := newAligner().Align(ref, string(b))
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if len(res.Ref) != 1 || res.Ref[0] != (Range{0, len(ref)}) {
		t.Fatalf("expected one full block, got ref=%v ext=%v", res.Ref, res.Ext)
	}
}

func TestNoAlignment(t *testing.T) {
	a := newAligner()
	for _, c := range [][2]string{{"", "MKV"}, {"MKV", ""}, {"", ""}, {"AAAA", "CCCC"}} {
		if _, err := a.Align(c[0], c[1]); !errors.Is(err, ErrNoAlignment) {
			t.Errorf("%q vs %q: want ErrNoAlignment, got %v", c[0], c[1], err)
		}
	}
}

func TestDeterministic(t *testing.T) {
	a := newAligner()
	ext := ref[3:12] + "GG" + ref[14:]
	r1, err := a.Align(ref, ext)
	if err != nil {
		t.Fatal(err)
	}
	r2, _ := a.Align(ref, ext)
	if !reflect.DeepEqual(r1, r2) {
		t.Fatalf("non-deterministic: %+v vs %+v", r1, r2)
	}
}

func TestRangeInvariantsRandom(t *testing.T) {
	const alphabet = "ACDEFGHIKLMNPQRSTVWY"
	rng := rand.New(rand.NewSource(7))
	randSeq := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(b)
	}
	mutate := func(s string) string {
		b := []byte(s)
		out := make([]byte, 0, len(b))
		for _, c := range b {
			switch rng.Intn(20) {
			case 0: // delete
			case 1: // substitute
				out = append(out, alphabet[rng.Intn(len(alphabet))])
			case 2: // insert
				out = append(out, c, alphabet[rng.Intn(len(alphabet))])
			default:
				out = append(out, c)
			}
		}
		return string(out)
	}

	a := newAligner()
	for iter := 0; iter < 50; iter++ {
		r := randSeq(20 + rng.Intn(120))
		e := mutate(r)
		res, err := a.Align(r, e)
		if err != nil {
			t.Fatalf("iter %d: %v", iter, err)
		}
		if len(res.Ref) != len(res.Ext) || len(res.Ref) == 0 {
			t.Fatalf("iter %d: block lists %d/%d", iter, len(res.Ref), len(res.Ext))
		}
		for k := range res.Ref {
			rr, er := res.Ref[k], res.Ext[k]
			if rr.Len() != er.Len() || rr.Len() <= 0 {
				t.Fatalf("iter %d block %d: lengths %v %v", iter, k, rr, er)
			}
			if rr.Start < 0 || rr.End > len(r) || er.Start < 0 || er.End > len(e) {
				t.Fatalf("iter %d block %d out of range: %v %v", iter, k, rr, er)
			}
			if k > 0 && (rr.Start < res.Ref[k-1].End || er.Start < res.Ext[k-1].End) {
				t.Fatalf("iter %d block %d overlaps or goes backwards", iter, k)
			}
		}
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
