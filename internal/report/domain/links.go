package domain

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

func DownloadURL(baseURL string, reportID snowflake.ID) string {
	return fmt.Sprintf("%s/api/reports/%s/download", baseURL, reportID)
}

func VerifyURL(baseURL string, reportID snowflake.ID, verificationCode string) string {
	return fmt.Sprintf("%s/api/reports/%s/verify?code=%s", baseURL, reportID, verificationCode)
}
