package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/nachoal/visionari-go/controller"
)

const consoleHelp = `Type a question to ask it about the current image.
  :image <path>   select an image (.png, .jpeg, .jpg)
  :max <n>        set max tokens
  :temp <v>       set temperature (0-1)
  :topp <v>       set top_p (0.01-1)
  :params         show the current image and sampling parameters
  :clear          drop the image and reset sampling
  :help           show this help
  :quit           exit`

func runConsole(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	rl, err := readline.New("visionari> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	c := &console{ctrl: rt.ctrl, apiKey: rt.cfg.APIKey, out: rl.Stdout()}
	if imagePath != "" {
		c.handle(cmd.Context(), ":image "+imagePath)
	}
	fmt.Fprintln(c.out, "Type :help for commands.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if err != nil { // io.EOF
			return nil
		}
		if c.handle(cmd.Context(), line) {
			return nil
		}
	}
}

// console interprets one line at a time against a controller
type console struct {
	ctrl   *controller.Controller
	apiKey string
	out    io.Writer
}

// handle runs one input line and reports whether the session should end
func (c *console) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		c.ask(ctx, line)
		return false
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "q", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(c.out, consoleHelp)
	case "image":
		c.selectImage(arg)
	case "max":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintln(c.out, "usage: :max <n>")
			return false
		}
		c.ctrl.SetMaxTokens(n)
		c.printParams()
	case "temp":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintln(c.out, "usage: :temp <0-1>")
			return false
		}
		c.ctrl.SetTemperature(v)
		c.printParams()
	case "topp":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintln(c.out, "usage: :topp <0.01-1>")
			return false
		}
		c.ctrl.SetTopP(v)
		c.printParams()
	case "params":
		c.printParams()
	case "clear":
		c.ctrl.Clear()
		fmt.Fprintln(c.out, "Cleared.")
		c.printParams()
	default:
		fmt.Fprintf(c.out, "unknown command :%s (try :help)\n", name)
	}
	return false
}

func (c *console) selectImage(path string) {
	if path == "" {
		fmt.Fprintln(c.out, "usage: :image <path>")
		return
	}
	img, err := c.ctrl.SelectImage(path)
	if err != nil {
		fmt.Fprintln(c.out, describe(err))
		return
	}
	b := img.Bounds()
	fmt.Fprintf(c.out, "Loaded %s (%s, %dx%d)\n", filepath.Base(path), img.Format, b.Dx(), b.Dy())
}

func (c *console) ask(ctx context.Context, query string) {
	c.ctrl.SetQuery(query)
	text, err := c.ctrl.Submit(ctx, c.apiKey, query)
	if err != nil {
		fmt.Fprintln(c.out, describe(err))
		return
	}
	fmt.Fprintln(c.out, text)
}

func (c *console) printParams() {
	s := c.ctrl.Session()
	image := "(none)"
	if s.HasImage() {
		image = s.ImagePath
	}
	fmt.Fprintf(c.out, "image=%s max_tokens=%d temperature=%.2f top_p=%.2f\n",
		image, s.Sampling.MaxTokens, s.Sampling.Temperature, s.Sampling.TopP)
}
