package evaluator

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/store"
)

// fakeNeighborhoodStore stubs the neighborhood lookup path of store.Store.
type fakeNeighborhoodStore struct {
	store.Store

	neighborhoods map[string]model.Neighborhood
	err           error
}

func (f *fakeNeighborhoodStore) GetNeighborhood(_ context.Context, id string) (*model.Neighborhood, error) {
	if f.err != nil {
		return nil, f.err
	}
	n, ok := f.neighborhoods[id]
	if !ok {
		return nil, eris.Errorf("neighborhood not found: %s", id)
	}
	return &n, nil
}

func withNeighborhood(n model.Neighborhood) *fakeNeighborhoodStore {
	return &fakeNeighborhoodStore{
		neighborhoods: map[string]model.Neighborhood{n.ID: n},
	}
}
