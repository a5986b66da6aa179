package components

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
)

func TestComponentsStoreInWorld(t *testing.T) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap3[Position, Velocity, Body](world)

	pos := Position{X: 10, Y: 20}
	vel := Velocity{X: 1, Y: -1}
	body := Body{Radius: 25, Mass: 0.5, Pinned: true}
	entity := mapper.NewEntity(&pos, &vel, &body)

	gotPos, gotVel, gotBody := mapper.Get(entity)
	if *gotPos != pos {
		t.Errorf("expected position %v, got %v", pos, *gotPos)
	}
	if *gotVel != vel {
		t.Errorf("expected velocity %v, got %v", vel, *gotVel)
	}
	if *gotBody != body {
		t.Errorf("expected body %v, got %v", body, *gotBody)
	}
}
