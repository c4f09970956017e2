package input

import (
	"github.com/go-vgo/robotgo"
)

// RobotInjector sends input through robotgo.
type RobotInjector struct{}

func (RobotInjector) KeyDown(code string) error {
	return robotgo.KeyToggle(code, "down")
}

func (RobotInjector) KeyUp(code string) error {
	return robotgo.KeyToggle(code, "up")
}

func (RobotInjector) MouseDown(button string) error {
	return robotgo.Toggle(button, "down")
}

func (RobotInjector) MouseUp(button string) error {
	return robotgo.Toggle(button, "up")
}

func (RobotInjector) MoveTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (RobotInjector) MoveRelative(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

func (RobotInjector) Location() (int, int) {
	return robotgo.Location()
}
