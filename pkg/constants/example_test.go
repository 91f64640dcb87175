package constants_test

import (
	"fmt"
	"net/http"
	"time"

	"github.com/agentstation/docledger/pkg/constants"
)

// Example_timeouts demonstrates timeout constants
func Example_timeouts() {
	client := &http.Client{
		Timeout: constants.DefaultHTTPTimeout,
	}

	fmt.Printf("HTTP client timeout: %v\n", client.Timeout)
	fmt.Printf("Refresh interval: %v\n", constants.DefaultRefreshInterval)
	// Output:
	// HTTP client timeout: 30s
	// Refresh interval: 5m0s
}

// Example_sheetLayouts demonstrates the date layouts written to the sheets
func Example_sheetLayouts() {
	t := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

	fmt.Println(t.Format(constants.SheetDateLayout))
	fmt.Println(t.Format(constants.SheetDateTimeLayout))
	// Output:
	// 15/03/2024
	// 15/03/2024 09:30
}
