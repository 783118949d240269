// Command smoke drives a running server through one text session: create,
// choose topics, generate ideas, then a research plan for the first idea.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Pretty print JSON helper
func prettyPrint(raw json.RawMessage) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func (c *client) send(method, path string, body interface{}) (*http.Response, envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, envelope{}, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, envelope{}, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp, envelope{}, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp, env, nil
}

func must(step string, resp *http.Response, env envelope, err error) envelope {
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("%s: %s (%s)", step, resp.Status, env.Message)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	return env
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:3000/api", "API base URL")
	timeout := flag.Duration("timeout", 3*time.Minute, "per request timeout")
	flag.Parse()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: *timeout}}

	color.Cyan("🚀 Starting StorySpark smoke test against %s\n", *baseURL)

	color.Yellow("\n1. Create session")
	resp, env, err := c.send(http.MethodPost, "/sessions", nil)
	env = must("create session", resp, env, err)
	var created struct {
		Token   string `json:"token"`
		Session struct {
			Text struct {
				Offered []string `json:"offered"`
			} `json:"text"`
		} `json:"session"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	c.token = created.Token

	color.Yellow("\n2. Choose two topics")
	for _, topic := range created.Session.Text.Offered[:2] {
		resp, env, err = c.send(http.MethodPost, "/session/options/toggle", map[string]string{"item": topic})
		must("toggle "+topic, resp, env, err)
		fmt.Printf("  + %s\n", topic)
	}

	color.Yellow("\n3. Generate ideas (waiting for the model)")
	resp, env, err = c.send(http.MethodPost, "/session/ideas?wait=true", nil)
	env = must("generate ideas", resp, env, err)
	var generated struct {
		Session struct {
			Ideas []struct {
				Title   string `json:"title"`
				Summary string `json:"summary"`
			} `json:"ideas"`
		} `json:"session"`
	}
	if err := json.Unmarshal(env.Data, &generated); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	for i, it := range generated.Session.Ideas {
		fmt.Printf("  [%d] %s\n      %s\n", i, color.New(color.Bold).Sprint(it.Title), it.Summary)
	}
	if len(generated.Session.Ideas) == 0 {
		color.Yellow("The model returned no ideas, stopping here.")
		return
	}

	color.Yellow("\n4. Generate research plan for idea 0")
	resp, env, err = c.send(http.MethodPost, "/session/ideas/0/plan?wait=true", nil)
	env = must("generate plan", resp, env, err)
	prettyPrint(env.Data)

	color.Yellow("\n5. End session")
	resp, env, err = c.send(http.MethodDelete, "/session", nil)
	must("end session", resp, env, err)

	color.Cyan("\n✅ Smoke test finished")
}
