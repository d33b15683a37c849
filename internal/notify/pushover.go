package notify

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const pushoverURL = "https://api.pushover.net/1/messages.json"

// Pushover pushes wake notifications through the Pushover message API.
type Pushover struct {
	Token string
	User  string
}

func NewPushover(token, user string) *Pushover {
	return &Pushover{Token: token, User: user}
}

func (p *Pushover) Push(title, body string) error {
	params := url.Values{}
	params.Set("token", p.Token)
	params.Set("user", p.User)
	params.Set("title", title)
	params.Set("message", body)

	resp, err := http.PostForm(pushoverURL, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pushover api error: status %s, body %s", resp.Status, string(respBody))
	}

	return nil
}

func (p *Pushover) Ready() bool {
	return p.Token != "" && p.User != ""
}
