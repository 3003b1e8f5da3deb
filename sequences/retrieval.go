package sequences

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/interoplab/conformd/evidence"
	"github.com/interoplab/conformd/types"
)

// RecordRetrieval searches each supported record type for the configured
// subject, reads every discovered record individually, and validates each
// against its core profile. Discovered ids are published to the run context
// for later sequences.
func RecordRetrieval() types.Sequence {
	return types.Sequence{
		ID:          "record-retrieval",
		Title:       "Record retrieval and validation",
		Description: "Searches, reads and profile-validates the subject's records for every supported record type.",
		Tests: []types.Test{
			{
				ID:          "search-by-subject",
				Title:       "Search returns the subject's records",
				Description: "A subject-scoped search must succeed for every supported record type.",
				Fn:          searchBySubject,
			},
			{
				ID:          "read-each-record",
				Title:       "Each discovered record is separately retrievable and conformant",
				Description: "Every record found by search must be readable by id and conform to its core profile.",
				Fn:          readEachRecord,
			},
			{
				ID:          "reject-unknown-id",
				Title:       "Reads of unknown ids are rejected",
				Description: "A read with a fabricated id must yield 404.",
				Optional:    true,
				Fn:          rejectUnknownID,
			},
		},
	}
}

// searchResponse is the generic search envelope the target returns.
type searchResponse struct {
	Entries []map[string]any `json:"entries"`
}

func searchBySubject(ctx context.Context, env *types.Env) error {
	base := env.Run.String(KeyBaseURL)
	subject := env.Run.String(KeySubject)

	total := 0
	for _, recordType := range env.Supports {
		resp, err := env.Client.Send(ctx, evidence.Request{
			Method: http.MethodGet,
			URL:    fmt.Sprintf("%s/%s?subject=%s", base, recordType, url.QueryEscape(subject)),
		})
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return types.Failf("search for %s returned %d", recordType, resp.StatusCode)
		}

		var body searchResponse
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return fmt.Errorf("search response for %s is not valid JSON: %w", recordType, err)
		}
		for _, entry := range body.Entries {
			id, _ := entry["id"].(string)
			if id == "" {
				return types.Failf("search entry for %s has no id", recordType)
			}
			env.Run.AddSeenID(recordType, id)
			total++
		}
	}

	if total == 0 {
		// Nothing to retrieve for this subject. Short-circuit the rest of
		// the sequence rather than failing checks that need data.
		env.Run.SetNoData("no records available for this subject")
		return types.Skipf("no records available for this subject")
	}

	ids := make(map[string][]string, len(env.Supports))
	for _, recordType := range env.Supports {
		ids[recordType] = env.Run.SeenIDs(recordType)
	}
	env.Run.Put(KeyRecordIDs, ids)
	return nil
}

func readEachRecord(ctx context.Context, env *types.Env) error {
	base := env.Run.String(KeyBaseURL)

	nonConformant := 0
	for _, recordType := range env.Supports {
		for _, id := range env.Run.SeenIDs(recordType) {
			resp, err := env.Client.Send(ctx, evidence.Request{
				Method: http.MethodGet,
				URL:    fmt.Sprintf("%s/%s/%s", base, recordType, url.PathEscape(id)),
			})
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return types.Failf("read of %s/%s returned %d", recordType, id, resp.StatusCode)
			}

			var record map[string]any
			if err := json.Unmarshal(resp.Body, &record); err != nil {
				return fmt.Errorf("record %s/%s is not valid JSON: %w", recordType, id, err)
			}

			outcome, err := env.Validator.Validate(record, ProfileFor(recordType))
			if err != nil {
				return err
			}
			env.AttachIssues(outcome.Issues...)
			if outcome.HasErrors() {
				nonConformant++
			}
		}
	}

	if nonConformant > 0 {
		return types.Failf("%d record(s) failed profile validation", nonConformant)
	}
	return nil
}

func rejectUnknownID(ctx context.Context, env *types.Env) error {
	base := env.Run.String(KeyBaseURL)
	recordType := env.Supports[0]

	resp, err := env.Client.Send(ctx, evidence.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/%s/does-not-exist-%s", base, recordType, "0000"),
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNotFound {
		return types.Failf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
	return nil
}

// ProfileFor maps a record type to its core profile identifier.
func ProfileFor(recordType string) string {
	return "core-" + strings.ToLower(recordType)
}
