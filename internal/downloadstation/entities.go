package downloadstation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// response is the uniform envelope Download Station wraps around every
// API reply. Data is typed per call site.
type response[D any] struct {
	Success bool      `json:"success"`
	Data    *D        `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

// apiError is the structured error object inside an unsuccessful
// envelope. Errors carries per-task failures for batch operations.
type apiError struct {
	Code   int            `json:"code"`
	Errors *TaskOperation `json:"errors,omitempty"`
}

type authData struct {
	Account      string `json:"account"`
	DeviceID     string `json:"device_id"`
	IkMessage    string `json:"ik_message"`
	IsPortalPort bool   `json:"is_portal_port"`
	SID          string `json:"sid"`
	SynoToken    string `json:"synotoken"`
}

// Tasks is the result of a list call.
type Tasks struct {
	Offset int    `json:"offset"`
	Task   []Task `json:"task"`
	Total  int    `json:"total"`
}

// TaskInfo is the result of a get call for specific task ids.
type TaskInfo struct {
	Task []Task `json:"task"`
}

// Task is one download job as reported by the server. Snapshots are
// immutable; state transitions happen upstream only.
type Task struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Size        int64        `json:"size"`
	Status      TaskStatus   `json:"status"`
	StatusExtra *StatusExtra `json:"status_extra,omitempty"`
	Additional  *Additional  `json:"additional,omitempty"`
}

// StatusExtra carries detail for error and extraction states.
type StatusExtra struct {
	ErrorDetail   string `json:"error_detail,omitempty"`
	UnzipProgress int    `json:"unzip_progress,omitempty"`
}

// Additional is the optional detail bundle requested via the
// "additional" parameter.
type Additional struct {
	Detail   *Detail   `json:"detail,omitempty"`
	File     []File    `json:"file,omitempty"`
	Peer     []Peer    `json:"peer,omitempty"`
	Tracker  []Tracker `json:"tracker,omitempty"`
	Transfer *Transfer `json:"transfer,omitempty"`
}

// Detail holds per-task metadata and timestamps.
type Detail struct {
	CompletedTime     UnixTime `json:"completed_time"`
	ConnectedLeechers int      `json:"connected_leechers"`
	ConnectedPeers    int      `json:"connected_peers"`
	ConnectedSeeders  int      `json:"connected_seeders"`
	CreatedTime       UnixTime `json:"created_time"`
	Destination       string   `json:"destination"`
	SeedElapsed       int64    `json:"seed_elapsed"`
	StartedTime       UnixTime `json:"started_time"`
	TotalPeers        int      `json:"total_peers"`
	TotalPieces       int      `json:"total_pieces"`
	URI               string   `json:"uri"`
	UnzipPassword     string   `json:"unzip_password,omitempty"`
	WaitingSeconds    int      `json:"waiting_seconds"`
}

// File is one file inside a download task.
type File struct {
	Filename       string `json:"filename"`
	Index          int    `json:"index"`
	Priority       string `json:"priority"`
	Size           int64  `json:"size"`
	SizeDownloaded int64  `json:"size_downloaded"`
	Wanted         bool   `json:"wanted"`
}

// Peer is one connected peer of a torrent task.
type Peer struct {
	Address       string  `json:"address"`
	Agent         string  `json:"agent"`
	Progress      float64 `json:"progress"`
	SpeedDownload int64   `json:"speed_download"`
	SpeedUpload   int64   `json:"speed_upload"`
}

// Tracker is one tracker of a torrent task.
type Tracker struct {
	Peers       int    `json:"peers"`
	Seeds       int    `json:"seeds"`
	Status      string `json:"status"`
	UpdateTimer int    `json:"update_timer"`
	URL         string `json:"url"`
}

// Transfer holds cumulative transfer statistics.
type Transfer struct {
	DownloadedPieces int   `json:"downloaded_pieces"`
	SizeDownloaded   int64 `json:"size_downloaded"`
	SizeUploaded     int64 `json:"size_uploaded"`
	SpeedDownload    int64 `json:"speed_download"`
	SpeedUpload      int64 `json:"speed_upload"`
}

// TaskOperation is the batch result of resume/delete calls. An empty
// FailedTask list means every addressed task succeeded.
type TaskOperation struct {
	FailedTask []FailedTask `json:"failed_task"`
}

// FailedTask pairs a task id with the upstream error code it failed with.
type FailedTask struct {
	Error int    `json:"error"`
	ID    string `json:"id"`
}

// TaskCompleted is the result of a force-complete call.
type TaskCompleted struct {
	TaskID string `json:"task_id"`
}

// TaskCreated is the result of a create call.
type TaskCreated struct {
	ListID []string `json:"list_id"`
	TaskID []string `json:"task_id"`
}

// UnixTime decodes the API's unix-second timestamps.
type UnixTime struct {
	time.Time
}

func (t *UnixTime) UnmarshalJSON(b []byte) error {
	sec, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("parse unix timestamp %q: %w", string(b), err)
	}
	t.Time = time.Unix(sec, 0).UTC()
	return nil
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Unix())
}

// TaskStatus is the numeric task state reported by the server.
// Codes 1-15 are regular states, 101+ are error states. Values outside
// the known set are preserved as-is for forward compatibility.
//
// This namespace is unrelated to envelope error codes: status 119 is
// ErrorExtractWrongPassword while envelope error 119 means the session
// expired. The two must never be conflated.
type TaskStatus int

const (
	StatusWaiting            TaskStatus = 1
	StatusDownloading        TaskStatus = 2
	StatusPaused             TaskStatus = 3
	StatusFinishing          TaskStatus = 4
	StatusFinished           TaskStatus = 5
	StatusHashChecking       TaskStatus = 6
	StatusPreSeeding         TaskStatus = 7
	StatusSeeding            TaskStatus = 8
	StatusFilehostingWaiting TaskStatus = 9
	StatusExtracting         TaskStatus = 10
	StatusPreprocessing      TaskStatus = 11
	StatusPreprocessPass     TaskStatus = 12
	StatusDownloaded         TaskStatus = 13
	StatusPostprocessing     TaskStatus = 14
	StatusCaptchaNeeded      TaskStatus = 15

	StatusError                            TaskStatus = 101
	StatusErrorBrokenLink                  TaskStatus = 102
	StatusErrorDestNoExist                 TaskStatus = 103
	StatusErrorDestDeny                    TaskStatus = 104
	StatusErrorDiskFull                    TaskStatus = 105
	StatusErrorQuotaReached                TaskStatus = 106
	StatusErrorTimeout                     TaskStatus = 107
	StatusErrorExceedMaxFsSize             TaskStatus = 108
	StatusErrorExceedMaxTempFsSize         TaskStatus = 109
	StatusErrorExceedMaxDestFsSize         TaskStatus = 110
	StatusErrorNameTooLongEncryption       TaskStatus = 111
	StatusErrorNameTooLong                 TaskStatus = 112
	StatusErrorTorrentDuplicate            TaskStatus = 113
	StatusErrorFileNoExist                 TaskStatus = 114
	StatusErrorRequiredPremium             TaskStatus = 115
	StatusErrorNotSupportType              TaskStatus = 116
	StatusErrorFtpEncryptionNotSupportType TaskStatus = 117
	StatusErrorExtractFail                 TaskStatus = 118
	StatusErrorExtractWrongPassword        TaskStatus = 119
	StatusErrorExtractInvalidArchive       TaskStatus = 120
	StatusErrorExtractQuotaReached         TaskStatus = 121
	StatusErrorExtractDiskFull             TaskStatus = 122
	StatusErrorTorrentInvalid              TaskStatus = 123
	StatusErrorRequiredAccount             TaskStatus = 124
	StatusErrorTryItLater                  TaskStatus = 125
	StatusErrorEncryption                  TaskStatus = 126
	StatusErrorMissingPython               TaskStatus = 127
	StatusErrorPrivateVideo                TaskStatus = 128
	StatusErrorExtractFolderNotExist       TaskStatus = 129
	StatusErrorNzbMissingArticle           TaskStatus = 130
	StatusErrorEd2kLinkDuplicate           TaskStatus = 131
	StatusErrorDestFileDuplicate           TaskStatus = 132
	StatusErrorParchiveRepairFailed        TaskStatus = 133
	StatusErrorInvalidAccountPassword      TaskStatus = 134
)

var statusNames = map[TaskStatus]string{
	StatusWaiting:                          "waiting",
	StatusDownloading:                      "downloading",
	StatusPaused:                           "paused",
	StatusFinishing:                        "finishing",
	StatusFinished:                         "finished",
	StatusHashChecking:                     "hash_checking",
	StatusPreSeeding:                       "pre_seeding",
	StatusSeeding:                          "seeding",
	StatusFilehostingWaiting:               "filehosting_waiting",
	StatusExtracting:                       "extracting",
	StatusPreprocessing:                    "preprocessing",
	StatusPreprocessPass:                   "preprocess_pass",
	StatusDownloaded:                       "downloaded",
	StatusPostprocessing:                   "postprocessing",
	StatusCaptchaNeeded:                    "captcha_needed",
	StatusError:                            "error",
	StatusErrorBrokenLink:                  "error_broken_link",
	StatusErrorDestNoExist:                 "error_dest_no_exist",
	StatusErrorDestDeny:                    "error_dest_deny",
	StatusErrorDiskFull:                    "error_disk_full",
	StatusErrorQuotaReached:                "error_quota_reached",
	StatusErrorTimeout:                     "error_timeout",
	StatusErrorExceedMaxFsSize:             "error_exceed_max_fs_size",
	StatusErrorExceedMaxTempFsSize:         "error_exceed_max_temp_fs_size",
	StatusErrorExceedMaxDestFsSize:         "error_exceed_max_dest_fs_size",
	StatusErrorNameTooLongEncryption:       "error_name_too_long_encryption",
	StatusErrorNameTooLong:                 "error_name_too_long",
	StatusErrorTorrentDuplicate:            "error_torrent_duplicate",
	StatusErrorFileNoExist:                 "error_file_no_exist",
	StatusErrorRequiredPremium:             "error_required_premium",
	StatusErrorNotSupportType:              "error_not_support_type",
	StatusErrorFtpEncryptionNotSupportType: "error_ftp_encryption_not_support_type",
	StatusErrorExtractFail:                 "error_extract_fail",
	StatusErrorExtractWrongPassword:        "error_extract_wrong_password",
	StatusErrorExtractInvalidArchive:       "error_extract_invalid_archive",
	StatusErrorExtractQuotaReached:         "error_extract_quota_reached",
	StatusErrorExtractDiskFull:             "error_extract_disk_full",
	StatusErrorTorrentInvalid:              "error_torrent_invalid",
	StatusErrorRequiredAccount:             "error_required_account",
	StatusErrorTryItLater:                  "error_try_it_later",
	StatusErrorEncryption:                  "error_encryption",
	StatusErrorMissingPython:               "error_missing_python",
	StatusErrorPrivateVideo:                "error_private_video",
	StatusErrorExtractFolderNotExist:       "error_extract_folder_not_exist",
	StatusErrorNzbMissingArticle:           "error_nzb_missing_article",
	StatusErrorEd2kLinkDuplicate:           "error_ed2k_link_duplicate",
	StatusErrorDestFileDuplicate:           "error_dest_file_duplicate",
	StatusErrorParchiveRepairFailed:        "error_parchive_repair_failed",
	StatusErrorInvalidAccountPassword:      "error_invalid_account_password",
}

func (s TaskStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// IsError reports whether the status is one of the error states.
func (s TaskStatus) IsError() bool {
	return s >= StatusError
}
