package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// chatFrame mirrors the fields of the chat SSE frame the client prints.
type chatFrame struct {
	SessionId  string `json:"session_id"`
	Type       string `json:"type"`
	Action     string `json:"action"`
	Section    string `json:"section"`
	Subsection string `json:"subsection"`
	Question   string `json:"question"`
	Reason     string `json:"reason"`
	Draft      string `json:"draft"`
	Idea       string `json:"idea"`
	Title      string `json:"title"`
	FinalState *struct {
		AllDrafts        map[string]string `json:"all_drafts"`
		ReviewScore      int               `json:"review_score"`
		ReviewFeedback   string            `json:"review_feedback"`
		ReviewRiskLevel  string            `json:"review_risk_level"`
		ImprovedDocument string            `json:"improved_document"`
	} `json:"final_state"`
}

type chatRequest struct {
	SessionId   string `json:"session_id,omitempty"`
	Query       string `json:"query"`
	IsInterrupt bool   `json:"is_interrupt"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api/contract/v1", "drafting API base URL")
	idea := flag.String("idea", "", "contract idea to start with")
	auto := flag.Bool("auto", false, "answer every question with a canned reply and accept every draft")
	flag.Parse()

	in := bufio.NewReader(os.Stdin)
	color.Cyan("=== Contract Drafting Simulation ===")

	if *idea == "" {
		*idea = prompt(in, "Describe your contract idea")
	}

	start := time.Now()
	frame, err := send(*baseURL, chatRequest{Query: *idea})
	for err == nil {
		color.White("(%s, session %s)", time.Since(start).Round(time.Millisecond), frame.SessionId)

		var next chatRequest
		next.SessionId = frame.SessionId
		next.IsInterrupt = true

		switch frame.Action {
		case "get_structure_review":
			color.Yellow("\nProposed title: %s", frame.Title)
			color.Yellow("Rephrased idea: %s", frame.Idea)
			color.Green("Accepting structure.")
		case "get_question_response":
			color.Yellow("\n[%s / %s]", frame.Section, frame.Subsection)
			color.Cyan("Q: %s", frame.Question)
			if frame.Reason != "" {
				color.White("   (%s)", frame.Reason)
			}
			next.Query = "Standard terms apply."
			if !*auto {
				next.Query = prompt(in, "Your answer")
			}
		case "get_reviewed_section_draft":
			color.Yellow("\nDraft for %s:", frame.Section)
			fmt.Println(frame.Draft)
			next.Query = frame.Draft
			if !*auto {
				if edited := prompt(in, "Press enter to accept, or type a replacement"); edited != "" {
					next.Query = edited
				}
			}
		case "generate_document":
			printResult(frame)
			return
		default:
			color.Red("\n%s", frame.Question)
			os.Exit(1)
		}

		start = time.Now()
		frame, err = send(*baseURL, next)
	}
	color.Red("Request failed: %v", err)
	os.Exit(1)
}

func printResult(frame *chatFrame) {
	color.Green("\n=== Document complete ===")
	if frame.FinalState == nil {
		return
	}
	st := frame.FinalState
	color.Green("Score: %d/100 (risk: %s)", st.ReviewScore, st.ReviewRiskLevel)
	fmt.Println(st.ReviewFeedback)
	for section, draft := range st.AllDrafts {
		color.Yellow("\n## %s", section)
		fmt.Println(draft)
	}
	if st.ImprovedDocument != "" {
		color.Cyan("\n=== Revised document ===")
		fmt.Println(st.ImprovedDocument)
	}
}

func prompt(in *bufio.Reader, label string) string {
	color.Magenta("%s: ", label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func send(baseURL string, req chatRequest) (*chatFrame, error) {
	body, _ := json.Marshal(req)
	resp, err := http.Post(baseURL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}

	data := strings.TrimSpace(strings.TrimPrefix(string(raw), "data: "))
	var frame chatFrame
	if err := json.Unmarshal([]byte(data), &frame); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &frame, nil
}
