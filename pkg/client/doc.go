// Package client is a Go client for the docinsight HTTP API.
//
//	c, _ := client.New("http://localhost:8000", client.WithAPIKey(key))
//	_, _ = c.Upload(ctx, "report.pdf", f)
//	res, _ := c.Query(ctx, "What was Q3 revenue?", "report.pdf")
//	fmt.Println(res.Answer)
//
// Insight, comparison and evaluation calls that fail inside the service come
// back as *APIError with StatusCode 200, mirroring the API's {"error": ...} body.
package client
