// food.go implements the snack spawning policy.

package rules

// snackGrowth cycles the growth value of spawned snacks through 1, 2, 3.
func snackGrowth(iteration int) int {
	return (2*iteration)%3 + 1
}

// spawnSnacks places one snack every SnackInterval iterations while fewer
// than MaxSnacks are on the board. Spawning is best effort: a full board just
// means no snack this time.
func (g *Game) spawnSnacks() {
	if g.SnackInterval <= 0 || g.iteration%g.SnackInterval != 0 {
		return
	}
	if g.World.AvailableSnacks() >= g.MaxSnacks {
		return
	}
	_ = g.World.PlaceSnackRandomly(snackGrowth(g.iteration))
}
