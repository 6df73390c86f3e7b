package printing

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Number}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; }
h1 { font-size: 22px; margin: 0 0 4px 0; }
.muted { color: #666; }
.header { display: flex; justify-content: space-between; margin-bottom: 24px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
th.num, td.num { text-align: right; }
tfoot td { font-weight: bold; border-bottom: none; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{.Company.Name}}</h1>
    <div class="muted">{{.Company.Address}}</div>
    <div class="muted">{{.Company.Contact}}</div>
  </div>
  <div>
    <h1>INVOICE</h1>
    <div>No. {{.Number}}</div>
    <div>Issued {{.IssuedAt}}</div>
    <div>Order date {{.OrderDate}}</div>
  </div>
</div>

<div>
  <strong>Bill to</strong><br>
  {{.CustomerName}}<br>
  {{if .CustomerEmail}}{{.CustomerEmail}}<br>{{end}}
  {{if .CustomerPhone}}{{.CustomerPhone}}<br>{{end}}
  {{.ShippingAddress}}
</div>

<p>
  Tracking number: <strong>{{.TrackingNumber}}</strong><br>
  Status: {{.Status}}<br>
  Payment: {{.PaymentMethod}}<br>
  Estimated delivery: {{.EstimatedDelivery}}
</p>

<table>
  <thead>
    <tr><th>#</th><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Amount</th></tr>
  </thead>
  <tbody>
  {{range $i, $line := .Lines}}
    <tr><td>{{inc $i}}</td><td>{{$line.Name}}</td><td class="num">{{$line.Quantity}}</td><td class="num">{{$line.UnitPrice}}</td><td class="num">{{$line.Amount}}</td></tr>
  {{end}}
  </tbody>
  <tfoot>
    <tr><td colspan="4" class="num">Total</td><td class="num">{{.Total}}</td></tr>
  </tfoot>
</table>

<p class="muted">Thank you for shopping with {{.Company.Name}}.</p>
</body>
</html>
`
