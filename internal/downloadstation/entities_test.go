package downloadstation

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env := response[Tasks]{
		Success: true,
		Data: &Tasks{
			Offset: 0,
			Total:  1,
			Task: []Task{
				{
					ID:     "task_id_1",
					Title:  "Test Torrent 1",
					Type:   "bt",
					Status: StatusDownloading,
					Size:   1234567890,
					Additional: &Additional{
						Transfer: &Transfer{
							SizeDownloaded: 594567890,
							SpeedDownload:  51200,
						},
					},
				},
			},
		},
	}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded response[Tasks]
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(env, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, env)
	}
}

func TestEnvelopeDecodesError(t *testing.T) {
	raw := []byte(`{"success":false,"error":{"code":119}}`)

	var env response[Tasks]
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Success {
		t.Error("Success = true, want false")
	}
	if env.Error == nil || env.Error.Code != 119 {
		t.Errorf("Error = %+v, want code 119", env.Error)
	}
}

func TestEnvelopeDecodesBatchErrors(t *testing.T) {
	raw := []byte(`{"success":false,"error":{"code":400,"errors":{"failed_task":[{"id":"task_id_2","error":544}]}}}`)

	var env response[TaskOperation]
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Error == nil || env.Error.Errors == nil {
		t.Fatalf("Error = %+v, want batch errors", env.Error)
	}
	failed := env.Error.Errors.FailedTask
	if len(failed) != 1 || failed[0].ID != "task_id_2" || failed[0].Error != 544 {
		t.Errorf("FailedTask = %+v", failed)
	}
}

func TestUnixTime(t *testing.T) {
	var d Detail
	if err := json.Unmarshal([]byte(`{"created_time":1700000000}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Unix(1700000000, 0).UTC()
	if !d.CreatedTime.Equal(want) {
		t.Errorf("CreatedTime = %v, want %v", d.CreatedTime.Time, want)
	}

	raw, err := json.Marshal(d.CreatedTime)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "1700000000" {
		t.Errorf("marshal = %s, want 1700000000", raw)
	}

	if err := json.Unmarshal([]byte(`{"created_time":"soon"}`), &d); err == nil {
		t.Error("non-numeric timestamp should fail to decode")
	}
}

func TestTaskStatusString(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   string
	}{
		{StatusWaiting, "waiting"},
		{StatusDownloading, "downloading"},
		{StatusFinished, "finished"},
		{StatusError, "error"},
		{StatusErrorExtractWrongPassword, "error_extract_wrong_password"},
		{StatusErrorInvalidAccountPassword, "error_invalid_account_password"},
		{TaskStatus(42), "unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("TaskStatus(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestTaskStatusIsError(t *testing.T) {
	for _, s := range []TaskStatus{StatusWaiting, StatusDownloading, StatusFinished, StatusCaptchaNeeded} {
		if s.IsError() {
			t.Errorf("%v.IsError() = true, want false", s)
		}
	}
	for _, s := range []TaskStatus{StatusError, StatusErrorDiskFull, StatusErrorInvalidAccountPassword} {
		if !s.IsError() {
			t.Errorf("%v.IsError() = false, want true", s)
		}
	}
}

func TestTaskStatusDecode(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"id":"task_id_1","status":101}`), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.Status != StatusError {
		t.Errorf("Status = %v, want %v", task.Status, StatusError)
	}
}
