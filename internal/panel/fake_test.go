package panel

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/yanizio/playeradmin/internal/player"
)

var errBackendDown = errors.New("backend down")

type listCall struct{ page, size int }

// fakeBackend is an in-memory Backend that records calls.
type fakeBackend struct {
	mu      sync.Mutex
	players map[int64]player.Player
	nextID  int64

	lists   []listCall
	counts  int
	creates []player.CreateRequest
	updates map[int64][]player.UpdateRequest
	deletes []int64

	failList, failCount, failCreate, failUpdate, failDelete error
}

func newFake(n int) *fakeBackend {
	f := &fakeBackend{players: map[int64]player.Player{}, nextID: 1, updates: map[int64][]player.UpdateRequest{}}
	for i := 0; i < n; i++ {
		f.add(player.Player{
			Name:       "player",
			Title:      "title",
			Race:       player.RaceHuman,
			Profession: player.ProfessionWarrior,
			Level:      i % 101,
			Birthday:   player.EpochMillis(86_400_000 * int64(i)),
		})
	}
	return f
}

func (f *fakeBackend) add(p player.Player) int64 {
	p.ID = f.nextID
	f.nextID++
	f.players[p.ID] = p
	return p.ID
}

func (f *fakeBackend) sorted() []player.Player {
	out := make([]player.Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeBackend) List(_ context.Context, page, size int) ([]player.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, listCall{page, size})
	if f.failList != nil {
		return nil, f.failList
	}
	all := f.sorted()
	from := page * size
	if from > len(all) {
		from = len(all)
	}
	to := from + size
	if to > len(all) {
		to = len(all)
	}
	return append([]player.Player(nil), all[from:to]...), nil
}

func (f *fakeBackend) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	if f.failCount != nil {
		return 0, f.failCount
	}
	return len(f.players), nil
}

func (f *fakeBackend) Create(_ context.Context, req player.CreateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, req)
	if f.failCreate != nil {
		return f.failCreate
	}
	f.add(player.Player{
		Name: req.Name, Title: req.Title, Race: req.Race, Profession: req.Profession,
		Level: req.Level, Birthday: req.Birthday, Banned: req.Banned,
	})
	return nil
}

func (f *fakeBackend) Update(_ context.Context, id int64, req player.UpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = append(f.updates[id], req)
	if f.failUpdate != nil {
		return f.failUpdate
	}
	p := f.players[id]
	p.Name, p.Title, p.Race, p.Profession, p.Banned = req.Name, req.Title, req.Race, req.Profession, req.Banned
	f.players[id] = p
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.players, id)
	return nil
}

func (f *fakeBackend) lastList() listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[len(f.lists)-1]
}
