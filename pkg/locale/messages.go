package locale

import "github.com/ideamans/go-l10n"

var korean = l10n.LexiconMap{
	// Status
	MsgExtracting:  "%s에서 프레임 추출 중... (대기열에 %d개의 비디오 남음)",
	MsgClassifying: "%s의 프레임 분류 중... (대기열에 %d개의 프레임 남음)",
	MsgIdle:        "대기 중",

	// Alerts
	MsgInvalidAPIKey:  "잘못된 API 키입니다. 키를 확인하고 다시 시도하세요.",
	MsgInvalidJSON:    "잘못된 JSON 파일 형식입니다.",
	MsgJSONParseError: "JSON 파일 분석에 실패했습니다.",
	MsgNoImagesToZip:  "다운로드할 이미지가 없습니다.",
	MsgZipError:       "ZIP 파일 생성에 실패했습니다.",
	MsgNotAVideo:      "%s은(는) 비디오 파일이 아닙니다.",
	MsgImported:       "%d개의 이미지를 가져왔습니다.",
	MsgMissingAPIKey:  "API 키가 설정되지 않았습니다. \"ainspire key set\"을 실행하거나 AINSPIRE_API_KEY를 설정하세요.",

	MsgCredentialSaved:   "API 키를 저장했습니다.",
	MsgCredentialCleared: "API 키를 삭제했습니다.",

	// Categories
	"Composition": "구도",
	"Action":      "액션",
	"Lighting":    "조명",
	"Color":       "색상",
	"Setting":     "배경",
}
