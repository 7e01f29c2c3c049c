package dictionary

import (
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

type fakeDict struct {
	id      string
	built   atomic.Int32
	closed  atomic.Bool
	failNew bool
}

func (d *fakeDict) NewTokenizer() (morph.Tokenizer, error) {
	if d.failNew {
		return nil, errors.New("broken dictionary")
	}
	d.built.Add(1)
	return &fakeTokenizer{dict: d}, nil
}

func (d *fakeDict) Close() error {
	d.closed.Store(true)
	return nil
}

type fakeTokenizer struct {
	dict *fakeDict
}

func (t *fakeTokenizer) Tokenize(mode morph.SplitMode, text string) (*morph.List, error) {
	n := len([]rune(text))
	ms := []morph.Morpheme{{Begin: 0, End: n, Surface: text, NormalizedForm: t.dict.id}}
	return morph.NewList(ms, mode, t.dict, nil), nil
}

func (t *fakeTokenizer) TokenizeSentences(mode morph.SplitMode, r io.Reader) morph.SentenceIterator {
	return morph.NewSentenceIterator(r, mode, t.Tokenize)
}

func (t *fakeTokenizer) Dictionary() morph.Dictionary {
	return t.dict
}

type notReloadable struct{ *Reloadable }

func TestReloadable_Versions(t *testing.T) {
	first := &fakeDict{id: "v0"}
	d := New("ipa", first)
	if d.Version() != 0 || d.Get() != first {
		t.Fatalf("new handle = (%d, %v), want (0, first)", d.Version(), d.Get())
	}

	second := &fakeDict{id: "v1"}
	next := New("ipa", second)
	if err := d.Reload(next); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if d.Version() != 1 || d.Get() != second {
		t.Errorf("after reload = (%d, %v), want (1, second)", d.Version(), d.Get())
	}
	if next.Version() != 1 || next.Get() != second {
		t.Errorf("source handle = (%d, %v), want (1, second)", next.Version(), next.Get())
	}

	if err := d.Reload(New("ipa", &fakeDict{id: "v2"})); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if d.Version() != 2 {
		t.Errorf("Version = %d, want 2", d.Version())
	}
}

func TestReloadable_ReloadNilIsNoop(t *testing.T) {
	d := New("ipa", &fakeDict{})
	if err := d.Reload(nil); err != nil {
		t.Fatalf("Reload(nil) failed: %v", err)
	}
	var typedNil *Reloadable
	if err := d.Reload(typedNil); err != nil {
		t.Fatalf("Reload(typed nil) failed: %v", err)
	}
	if d.Version() != 0 {
		t.Errorf("Version = %d, want 0", d.Version())
	}
}

func TestReloadable_UnsupportedType(t *testing.T) {
	d := New("ipa", &fakeDict{})
	err := d.Reload(notReloadable{New("other", &fakeDict{})})
	if !errors.Is(err, morph.ErrUnsupportedDictionary) {
		t.Errorf("Reload error = %v, want ErrUnsupportedDictionary", err)
	}
}

func TestReloadAware(t *testing.T) {
	d := New("ipa", &fakeDict{id: "v0"})
	calls := 0
	aware := NewReloadAware(func(dict morph.Dictionary) (string, error) {
		calls++
		return dict.(*fakeDict).id, nil
	})

	if _, err := aware.Get(); !errors.Is(err, morph.ErrUninitialized) {
		t.Fatalf("Get before MaybeReload error = %v, want ErrUninitialized", err)
	}

	v, err := aware.MaybeReload(d)
	if err != nil || v != "v0" {
		t.Fatalf("MaybeReload = (%q, %v), want v0", v, err)
	}
	if _, err := aware.MaybeReload(d); err != nil {
		t.Fatalf("MaybeReload failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}

	if err := d.Reload(New("ipa", &fakeDict{id: "v1"})); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if v, _ := aware.Get(); v != "v0" {
		t.Errorf("Get before refresh = %q, want the stale v0", v)
	}
	v, _ = aware.MaybeReload(d)
	if v != "v1" || calls != 2 {
		t.Errorf("after reload value = %q calls = %d, want v1 and 2", v, calls)
	}
	if version, ok := aware.Version(); !ok || version != 1 {
		t.Errorf("Version = (%d, %v), want (1, true)", version, ok)
	}
}

func TestReloadAware_ComputeError(t *testing.T) {
	d := New("ipa", &fakeDict{})
	boom := errors.New("boom")
	_, err := Derive(d, func(morph.Dictionary) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Derive error = %v, want boom", err)
	}
}

func TestTokenizer_ReloadPropagation(t *testing.T) {
	old := &fakeDict{id: "v0"}
	d := New("ipa", old)
	tok := NewTokenizer(d)

	engine, err := tok.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	again, _ := tok.Get()
	if again != engine {
		t.Error("Expected the same engine while the version is unchanged")
	}

	// an analysis started before the reload
	it := engine.TokenizeSentences(morph.SplitModeC, strings.NewReader("東京。京都。"))
	if !it.Next() {
		t.Fatalf("first sentence missing: %v", it.Err())
	}

	fresh := &fakeDict{id: "v1"}
	if err := d.Reload(New("ipa", fresh)); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	next, err := tok.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if next.Dictionary() != fresh {
		t.Error("Expected an engine built from the reloaded dictionary")
	}
	if v, _ := tok.EngineVersion(); v != 1 {
		t.Errorf("EngineVersion = %d, want 1", v)
	}

	if !it.Next() {
		t.Fatalf("in-flight iterator failed after reload: %v", it.Err())
	}
	if got := it.Sentence().At(0).NormalizedForm; got != "v0" {
		t.Errorf("in-flight sentence came from %q, want v0", got)
	}
}

func TestTokenizer_MaybeReload(t *testing.T) {
	d := New("ipa", &fakeDict{id: "v0"})
	tok := NewTokenizer(d)
	engine, err := tok.MaybeReload(New("ipa", &fakeDict{id: "v1"}))
	if err != nil {
		t.Fatalf("MaybeReload failed: %v", err)
	}
	if engine.Dictionary().(*fakeDict).id != "v1" {
		t.Error("Expected engine on v1")
	}
}

func TestTokenizer_EngineErrorIsLabelled(t *testing.T) {
	tok := NewTokenizer(New("ipa", &fakeDict{failNew: true}))
	_, err := tok.Get()
	if stage, ok := morph.StageOf(err); !ok || stage != morph.StageDictionary {
		t.Errorf("error %v stage = %q, want dictionary", err, stage)
	}
}

func TestRegistry_AcquireRelease(t *testing.T) {
	var loads atomic.Int32
	var last *fakeDict
	var mu sync.Mutex
	reg := NewRegistry(func(name string) (morph.Dictionary, error) {
		loads.Add(1)
		mu.Lock()
		defer mu.Unlock()
		last = &fakeDict{id: name}
		return last, nil
	})

	var wg sync.WaitGroup
	handles := make([]*Reloadable, 8)
	releases := make([]func(), 8)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, release, err := reg.Acquire("ipa")
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			handles[i], releases[i] = d, release
		}(i)
	}
	wg.Wait()

	if loads.Load() != 1 {
		t.Errorf("loader called %d times, want 1", loads.Load())
	}
	for _, h := range handles[1:] {
		if h != handles[0] {
			t.Fatal("Expected every holder to share one handle")
		}
	}

	for _, release := range releases[1:] {
		release()
		release()
	}
	if last.closed.Load() {
		t.Fatal("dictionary closed while still acquired")
	}
	releases[0]()
	if !last.closed.Load() {
		t.Error("Expected the dictionary to be closed after the last release")
	}
	if len(reg.Names()) != 0 {
		t.Errorf("Names = %v, want none", reg.Names())
	}
}

func TestRegistry_Reload(t *testing.T) {
	n := 0
	reg := NewRegistry(func(name string) (morph.Dictionary, error) {
		n++
		return &fakeDict{id: name + string(rune('0'+n))}, nil
	})

	if _, err := reg.Reload("ipa"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Reload of unknown name error = %v, want ErrNotLoaded", err)
	}

	d, release, err := reg.Acquire("ipa")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	version, err := reg.Reload("ipa")
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if version != 1 || d.Version() != 1 {
		t.Errorf("version = %d, handle version = %d, want 1", version, d.Version())
	}
	if d.Get().(*fakeDict).id != "ipa2" {
		t.Errorf("handle serves %q, want ipa2", d.Get().(*fakeDict).id)
	}
	if got := reg.Versions()["ipa"]; got != 1 {
		t.Errorf("Versions[ipa] = %d, want 1", got)
	}
}

func TestRegistry_ReloadAfterLastRelease(t *testing.T) {
	var loaded []*fakeDict
	var release func()
	reg := NewRegistry(func(name string) (morph.Dictionary, error) {
		d := &fakeDict{id: name}
		loaded = append(loaded, d)
		if len(loaded) == 2 {
			// the last holder lets go while the reload is loading
			release()
		}
		return d, nil
	})

	_, rel, err := reg.Acquire("ipa")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	release = rel

	if _, err := reg.Reload("ipa"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Reload error = %v, want ErrNotLoaded", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loader called %d times, want 2", len(loaded))
	}
	for i, d := range loaded {
		if !d.closed.Load() {
			t.Errorf("instance %d was not closed", i)
		}
	}
	if names := reg.Names(); len(names) != 0 {
		t.Errorf("Names = %v, want none", names)
	}
}

func TestRegistry_LoadError(t *testing.T) {
	boom := errors.New("missing file")
	reg := NewRegistry(func(string) (morph.Dictionary, error) { return nil, boom })
	_, _, err := reg.Acquire("ipa")
	if !errors.Is(err, boom) {
		t.Errorf("Acquire error = %v, want %v", err, boom)
	}
}
