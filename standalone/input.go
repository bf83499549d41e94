package standalone

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/user-none/nescore/emucore"
)

// keyBindings maps keyboard keys to controller button indexes. Multiple
// keys may drive the same button (Enter and both Shift keys cover the
// common Start/Select layouts).
var keyBindings = map[ebiten.Key]int{
	ebiten.KeyArrowRight: emucore.ButtonRight,
	ebiten.KeyArrowLeft:  emucore.ButtonLeft,
	ebiten.KeyArrowDown:  emucore.ButtonDown,
	ebiten.KeyArrowUp:    emucore.ButtonUp,
	ebiten.KeyEnter:      emucore.ButtonStart,
	ebiten.KeyShiftRight: emucore.ButtonSelect,
	ebiten.KeyBackspace:  emucore.ButtonSelect,
	ebiten.KeyZ:          emucore.ButtonB,
	ebiten.KeyX:          emucore.ButtonA,
}

// padBindings maps standard-layout gamepad buttons to controller button
// indexes. RightBottom is the south face button (A on Xbox pads).
var padBindings = map[ebiten.StandardGamepadButton]int{
	ebiten.StandardGamepadButtonLeftRight:   emucore.ButtonRight,
	ebiten.StandardGamepadButtonLeftLeft:    emucore.ButtonLeft,
	ebiten.StandardGamepadButtonLeftBottom:  emucore.ButtonDown,
	ebiten.StandardGamepadButtonLeftTop:     emucore.ButtonUp,
	ebiten.StandardGamepadButtonCenterRight: emucore.ButtonStart,
	ebiten.StandardGamepadButtonCenterLeft:  emucore.ButtonSelect,
	ebiten.StandardGamepadButtonRightLeft:   emucore.ButtonB,
	ebiten.StandardGamepadButtonRightBottom: emucore.ButtonA,
}

// analogThreshold is how far the left stick must deflect to register as
// a d-pad press.
const analogThreshold = 0.5

// PollButtons samples the keyboard and the first connected gamepad and
// returns the combined controller bitmask, one bit per button index.
func PollButtons() uint8 {
	var mask uint8

	for key, button := range keyBindings {
		if ebiten.IsKeyPressed(key) {
			mask |= 1 << uint(button)
		}
	}

	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 {
		return mask
	}
	id := ids[0]

	for pad, button := range padBindings {
		if ebiten.IsStandardGamepadButtonPressed(id, pad) {
			mask |= 1 << uint(button)
		}
	}

	mask |= stickMask(
		ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
		ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
	)

	return mask
}

// stickMask converts analog stick deflection into d-pad bits.
func stickMask(x, y float64) uint8 {
	var mask uint8
	if x > analogThreshold {
		mask |= 1 << emucore.ButtonRight
	}
	if x < -analogThreshold {
		mask |= 1 << emucore.ButtonLeft
	}
	if y > analogThreshold {
		mask |= 1 << emucore.ButtonDown
	}
	if y < -analogThreshold {
		mask |= 1 << emucore.ButtonUp
	}
	return mask
}
