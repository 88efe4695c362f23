// Package main provides localization for the ainspire CLI.
package main

import (
	"github.com/ideamans/go-l10n"
	"github.com/user/ainspire/pkg/locale"
)

func init() {
	// Register Korean translations for CLI messages.
	locale.Register(locale.Korean, l10n.LexiconMap{
		// Flag categories
		"Configuration":  "설정",
		"Logging":        "로그",
		"Sampling":       "프레임 추출",
		"Classification": "분류",
		"Output":         "출력",
		"Debug":          "디버그",
		"Server":         "서버",

		// Root command
		"Collect labeled reference frames from videos": "동영상에서 라벨이 붙은 레퍼런스 프레임을 수집",
		"YAML configuration file":                      "YAML 설정 파일",
		"Message language (en, ko)":                    "메시지 언어 (en, ko)",
		"Log level (debug, info, warn, error)":         "로그 레벨 (debug, info, warn, error)",
		"Also write JSON logs to this file":            "JSON 로그를 이 파일에도 기록",
		"Suppress all log output":                      "모든 로그 출력 숨기기",

		// Extract command
		"Extract and classify frames from videos": "동영상에서 프레임을 추출하고 분류",
		"VIDEO...":                                              "동영상...",
		"Seconds between captured frames (1-30)":                "프레임 캡처 간격(초, 1-30)",
		"JPEG quality of captured frames (1-100)":               "캡처 프레임의 JPEG 품질 (1-100)",
		"Downscale frames wider than this many pixels":          "이 너비(픽셀)보다 넓은 프레임을 축소",
		"Path to ffmpeg (falls back to FFMPEG_PATH, then PATH)": "ffmpeg 경로 (없으면 FFMPEG_PATH, PATH 순으로 검색)",
		"Vision model used for classification":                  "분류에 사용할 비전 모델",
		"Collection JSON file to write":                         "저장할 컬렉션 JSON 파일",
		"Start from a previously exported collection":           "이전에 내보낸 컬렉션에서 시작",
		"Write a Markdown run summary (- for stdout)":           "Markdown 실행 요약 저장 (- 는 표준 출력)",
		"Save every captured frame and classifier response":     "캡처한 모든 프레임과 분류 응답을 저장",
		"Directory for debug output":                            "디버그 출력 디렉터리",
		"No videos given":                                       "동영상이 지정되지 않았습니다",

		// Serve command
		"Serve the collection and pipeline over HTTP": "HTTP로 컬렉션과 파이프라인 제공",
		"Address to listen on":                        "수신 주소",

		// Key command
		"Manage the classifier API key":   "분류기 API 키 관리",
		"Store an API key":                "API 키 저장",
		"KEY":                             "키",
		"Remove the stored API key":       "저장된 API 키 삭제",
		"Show the stored API key, masked": "저장된 API 키를 가려서 표시",
		"Usage: ainspire key set KEY":     "사용법: ainspire key set 키",

		// Filters command
		"List the filter options of a collection file": "컬렉션 파일의 필터 옵션 나열",
		"COLLECTION.json":                         "컬렉션.json",
		"Usage: ainspire filters COLLECTION.json": "사용법: ainspire filters 컬렉션.json",

		// Version command
		"Show version information": "버전 정보 표시",
		"ainspire version %s":      "ainspire 버전 %s",

		// Log messages
		"Interrupted, finishing queued frames (interrupt again to abort)...": "중단되었습니다. 대기 중인 프레임을 마무리합니다 (다시 누르면 즉시 종료)...",
		"Aborting":                              "종료합니다",
		"Cannot read %s: %v":                    "%s을(를) 읽을 수 없습니다: %v",
		"Collection of %d image(s) saved to %s": "이미지 %d개의 컬렉션을 %s에 저장했습니다",
		"Summary saved to %s":                   "요약을 %s에 저장했습니다",
		"Listening on %s":                       "%s에서 대기 중",
		"Shutting down server":                  "서버를 종료합니다",
		"ffprobe not found, only MP4 files can be probed: %v": "ffprobe를 찾을 수 없어 MP4 파일만 분석할 수 있습니다: %v",
	})
}
