package render

// pageTemplate 渲染可视树。宽度固定为 A4 (794px)，打印时不留页边距。
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        @page { size: A4; margin: 0; }
        * { box-sizing: border-box; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
        body { margin: 0; padding: 0; background: white; }
        .cv-page { display: flex; flex-wrap: wrap; align-content: flex-start; }
        .cv-column { display: flex; flex-direction: column; gap: var(--spacing); padding: 32px; }
        .cv-column .cv-column { padding: 0; }
        .cv-column[data-role="body"] { flex-direction: row; gap: 32px; padding: 48px; }
        .cv-section { position: relative; }
        .cv-section > * + * { margin-top: var(--item-gap); }
        .cv-heading { margin: 0; font-family: var(--font-head); font-weight: 700; }
        .cv-heading[data-role="label"] { text-transform: uppercase; letter-spacing: 0.1em;
            border-bottom: var(--line-width) solid var(--line-color); padding-bottom: 6px; }
        .cv-text { margin: 0; white-space: pre-wrap; line-height: 1.6; }
        .cv-contact { word-break: break-all; }
        .cv-image { width: 128px; height: 128px; object-fit: cover; display: inline-block; }
        .cv-image-empty { background: #d1d5db; }
        .cv-bar-track { width: 100%; height: 6px; background: rgba(255,255,255,0.3); border-radius: var(--radius); }
        .cv-bar-fill { height: 6px; background: currentColor; border-radius: var(--radius); }
        .cv-tags { display: flex; flex-wrap: wrap; gap: 8px; }
        .cv-tag { padding: 4px 12px; border-radius: calc(var(--radius) + 4px); display: inline-block; }
        .cv-table-wrap { margin-bottom: 24px; }
        .cv-table-box { overflow: hidden; border-radius: var(--radius); }
        .cv-table { width: 100%; border-collapse: collapse; font-size: 14px; text-align: left; }
        .cv-table th, .cv-table td { padding: 8px; border: 1px solid; }
        .cv-table th { border-color: rgba(255,255,255,0.2); }
        .cv-table tbody tr:nth-child(odd) { background: rgba(0,0,0,0.02); }
    </style>
</head>
<body>
    <div class="cv-page" id="pdf-root" style="{{pageCSS .Theme}}">
        {{range .Children}}{{template "node" .}}{{end}}
    </div>
    <div id="{{readyID}}" hidden></div>
</body>
</html>
{{define "node"}}
{{- if eq .Kind "column"}}
<div class="cv-column" data-role="{{.Role}}" style="{{nodeCSS .}}">{{range .Children}}{{template "node" .}}{{end}}</div>
{{- else if eq .Kind "section"}}
<section class="cv-section" data-section="{{.Section}}" style="{{sectionCSS .Style}}">
{{- if eq .Section "band-skills"}}
{{- range .Children}}{{if ne .Kind "tag"}}{{template "node" .}}{{end}}{{end}}
<div class="cv-tags">{{range .Children}}{{if eq .Kind "tag"}}{{template "node" .}}{{end}}{{end}}</div>
{{- else}}
{{- range .Children}}{{template "node" .}}{{end}}
{{- end}}
</section>
{{- else if eq .Kind "heading"}}
<h3 class="cv-heading" data-role="{{.Role}}" style="{{nodeCSS .}}">{{.Text}}</h3>
{{- else if eq .Kind "text"}}
<p class="cv-text" data-role="{{.Role}}" style="{{nodeCSS .}}">{{.Text}}</p>
{{- else if eq .Kind "contact"}}
<div class="cv-contact" data-role="{{.Role}}" style="{{nodeCSS .}}">{{.Text}}</div>
{{- else if eq .Kind "image"}}
{{- if .Image.URL}}
<img class="cv-image" src="{{safeURL .Image.URL}}" alt="Profile" style="{{imageCSS .Image}}">
{{- else}}
<div class="cv-image cv-image-empty" style="{{imageCSS .Image}}"></div>
{{- end}}
{{- else if eq .Kind "skill-bar"}}
<div class="cv-skill" style="{{nodeCSS .}}">
    <div>{{.Text}}</div>
    <div class="cv-bar-track"><div class="cv-bar-fill" style="width:{{pct .Fill}}"></div></div>
</div>
{{- else if eq .Kind "tag"}}
<span class="cv-tag" style="{{nodeCSS .}}">{{.Text}}</span>
{{- else if eq .Kind "entry"}}
<div class="cv-entry" data-role="{{.Role}}">{{range .Children}}{{template "node" .}}{{end}}</div>
{{- else if eq .Kind "table"}}
{{- with .Table}}
<div class="cv-table-wrap" data-table="{{.ID}}">
    <h3 class="cv-heading" style="color:{{color .TitleColor}}">{{.Title}}</h3>
    <div class="cv-table-box" style="border:1px solid {{color .Colors.OuterBorder}}">
        <table class="cv-table" style="color:{{color .Colors.TextColor}}">
            <thead><tr style="background:{{color .Colors.HeaderBg}};color:{{color .Colors.HeaderText}}">
                {{range .Headers}}<th>{{.}}</th>{{end}}
            </tr></thead>
            <tbody>
            {{- $border := .Colors.BorderColor}}
            {{range .Rows}}<tr>{{range .}}<td style="border-color:{{color $border}}">{{.}}</td>{{end}}</tr>{{end}}
            </tbody>
        </table>
    </div>
</div>
{{- end}}
{{- end}}
{{- end}}`
