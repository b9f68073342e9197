// Package devtools is a small client for the Chromium remote debugging HTTP
// endpoints (/json/version, /json/list, /json/new, /json/activate,
// /json/close). The websocket protocol itself is handled by chromedp.
package devtools
