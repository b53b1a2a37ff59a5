package captcha

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/litescript/ls-rarbg-cli/internal/cookies"
)

const manualInstructions = `
The site's CAPTCHA must be solved before results are served (this only
needs to be done once in a while):

  1. On any PC, open this link in a web browser:
       %s
  2. Solve and submit the CAPTCHA; you should land on a torrent page.
  3. Open the console (F12 -> Console) and run:
       console.log(document.cookie)
  4. Copy the output. It looks like: "tcc; gaDts48g=q8hppt; ..."
  5. Paste it here and press enter.

>>> `

// ManualResolver prompts the user to solve the challenge in their own
// browser and paste the resulting cookie string back.
type ManualResolver struct {
	in  io.Reader
	out io.Writer
}

// NewManualResolver creates a prompt-based resolver, normally over
// stdin/stderr.
func NewManualResolver(in io.Reader, out io.Writer) *ManualResolver {
	return &ManualResolver{in: in, out: out}
}

// Resolve prints the instructions and reads one pasted cookie line.
// The read happens on its own goroutine so cancellation is honored
// while the prompt is waiting.
func (r *ManualResolver) Resolve(ctx context.Context, challengeURL string) (cookies.Jar, error) {
	fmt.Fprintf(r.out, manualInstructions, challengeURL)

	type lineResult struct {
		text string
		err  error
	}
	lines := make(chan lineResult, 1)

	go func() {
		scanner := bufio.NewScanner(r.in)
		if !scanner.Scan() {
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			lines <- lineResult{err: err}
			return
		}
		lines <- lineResult{text: scanner.Text()}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case line := <-lines:
		if line.err != nil {
			return nil, fmt.Errorf("failed to read cookie input: %w", line.err)
		}

		text := strings.Trim(strings.TrimSpace(line.text), `'"`)
		jar := cookies.ParseHeader(text)
		if len(jar) == 0 {
			return nil, fmt.Errorf("no cookies in pasted input")
		}
		return jar, nil
	}
}
