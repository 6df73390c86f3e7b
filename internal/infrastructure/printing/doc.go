// Package printing renders order invoices.
//
// Invoices are built from an html/template and printed to PDF by a headless
// Chrome driven through chromedp. When no browser is available the HTML
// document is served instead. Rendered PDFs can be archived to object storage.
package printing
