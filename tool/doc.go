// Package tool provides agent tools that operate alongside graph execution.
//
// Tools expose a uniform Name/Description/Call surface so they can be handed
// to LLM providers or invoked directly:
//
//   - AuditTrail renders run documents from a store.RunStore as markdown
//     timelines, with optional sanitized HTML output for dashboards.
//   - WebScraper fetches a page and extracts its readable content, honoring
//     robots.txt and refusing private addresses.
package tool
