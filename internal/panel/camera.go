package panel

import (
	"fmt"
	"sync"

	"github.com/ethpandaops/glmetrics/internal/scene"
)

// NumCameraSlots is the number of saved-view buttons.
const NumCameraSlots = 5

// CameraApp is the part of App the view slots need.
type CameraApp interface {
	GetCameraState() scene.CameraState
	SetCameraState(state scene.CameraState)
	Render()
}

// CameraSlots stores saved camera poses. The first activation of an empty
// slot captures the current pose; later activations restore it.
type CameraSlots struct {
	mu    sync.Mutex
	slots [NumCameraSlots]*scene.CameraState
}

// Activate captures or restores slot i. It returns true when the pose was
// captured.
func (c *CameraSlots) Activate(i int, app CameraApp) (bool, error) {
	if err := checkSlot(i); err != nil {
		return false, err
	}

	c.mu.Lock()
	saved := c.slots[i]

	if saved == nil {
		state := app.GetCameraState()
		c.slots[i] = &state
		c.mu.Unlock()

		return true, nil
	}

	state := *saved
	c.mu.Unlock()

	app.SetCameraState(state)
	app.Render()

	return false, nil
}

// Erase clears slot i.
func (c *CameraSlots) Erase(i int) error {
	if err := checkSlot(i); err != nil {
		return err
	}

	c.mu.Lock()
	c.slots[i] = nil
	c.mu.Unlock()

	return nil
}

// Saved reports whether slot i holds a pose.
func (c *CameraSlots) Saved(i int) bool {
	if checkSlot(i) != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.slots[i] != nil
}

func checkSlot(i int) error {
	if i < 0 || i >= NumCameraSlots {
		return fmt.Errorf("camera slot %d out of range [0, %d)", i, NumCameraSlots)
	}

	return nil
}
