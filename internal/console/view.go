package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/manifoldco/promptui"
)

const defaultBarWidth = 30

// View prints wizard messages and a single-line progress bar to out.
// It is safe for concurrent use; the progress ticker writes from its own goroutine.
type View struct {
	mu     sync.Mutex
	out    io.Writer
	width  int
	inLine bool
}

func NewView(out io.Writer) *View {
	return &View{out: out, width: defaultBarWidth}
}

func (v *View) Info(msg string) {
	v.line(promptui.IconGood + " " + msg)
}

func (v *View) Error(msg string) {
	v.line(promptui.IconBad + " " + msg)
}

func (v *View) Progress(percent int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	percent = max(0, min(percent, 100))
	fmt.Fprint(v.out, "\r"+Bar(percent, v.width))

	if percent == 100 {
		fmt.Fprintln(v.out)
		v.inLine = false
		return
	}
	v.inLine = true
}

func (v *View) line(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.inLine {
		fmt.Fprintln(v.out)
		v.inLine = false
	}
	fmt.Fprintln(v.out, msg)
}

// Bar renders "[####......]  40%".
func Bar(percent, width int) string {
	if width <= 0 {
		width = defaultBarWidth
	}
	percent = max(0, min(percent, 100))
	filled := percent * width / 100

	return fmt.Sprintf("[%s%s] %3d%%",
		strings.Repeat("#", filled),
		strings.Repeat(".", width-filled),
		percent,
	)
}
