package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册 /v1 下的业务路由。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	documentHandler := NewDocumentHandler(deps.Session)
	configHandler := NewConfigHandler(deps.Session)
	tableHandler := NewTableHandler(deps.Session, deps.Scanner, deps.MaxUploadBytes)
	renderHandler := NewRenderHandler(deps.Session, deps.Printer, deps.Assets, deps.Tasks)
	suggestHandler := NewSuggestHandler(deps.Session, deps.MaxUploadBytes)
	assetHandler := NewAssetHandler(deps.Session, deps.Assets, deps.Scanner, deps.MaxUploadBytes)
	wsHandler := NewWsHandler(deps.Redis, deps.Logger, nil)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		doc := v1.Group("/document")
		{
			doc.GET("", documentHandler.GetDocument)
			doc.PUT("", documentHandler.ReplaceDocument)
			doc.PATCH("/personal-info", documentHandler.UpdatePersonalInfo)
			doc.PUT("/image-style", documentHandler.SetImageStyle)
			doc.DELETE("/image-style", documentHandler.ResetImageStyle)
			doc.POST("/image", assetHandler.UploadPhoto)
			doc.POST("/experience", documentHandler.AddExperience)
			doc.DELETE("/experience/:id", documentHandler.RemoveExperience)
			doc.POST("/education", documentHandler.AddEducation)
			doc.DELETE("/education/:id", documentHandler.RemoveEducation)
			doc.POST("/skills", documentHandler.AddSkill)
			doc.DELETE("/skills/:id", documentHandler.RemoveSkill)
			doc.PUT("/section-styles/:section", documentHandler.SetSectionStyle)
			doc.DELETE("/section-styles/:section", documentHandler.ResetSectionStyle)
		}

		v1.POST("/import", documentHandler.Import)
		v1.GET("/export", documentHandler.Export)

		v1.GET("/config", configHandler.GetConfig)
		v1.PATCH("/config", configHandler.UpdateConfig)

		profiles := v1.Group("/profiles")
		{
			profiles.GET("", configHandler.ListProfiles)
			profiles.POST("", configHandler.CreateProfile)
			profiles.GET("/export", configHandler.ExportProfiles)
			profiles.POST("/import", configHandler.ImportProfiles)
			profiles.POST("/:id/select", configHandler.SelectProfile)
			profiles.DELETE("/:id", configHandler.DeleteProfile)
		}

		tables := v1.Group("/tables")
		{
			tables.POST("", tableHandler.AddTable)
			tables.POST("/import", tableHandler.ImportWorkbook)
			tables.DELETE("/:index", tableHandler.RemoveTable)
			tables.POST("/:index/edit", tableHandler.BeginEdit)
		}

		edits := v1.Group("/table-edits")
		{
			edits.POST("/:edit/ops", tableHandler.ApplyOp)
			edits.POST("/:edit/commit", tableHandler.Commit)
			edits.DELETE("/:edit", tableHandler.Cancel)
		}

		v1.GET("/render", renderHandler.Tree)
		v1.GET("/render/html", renderHandler.HTML)
		v1.GET("/layouts/:template/sections", renderHandler.Sections)
		v1.POST("/export/pdf", renderHandler.ExportPDF)

		suggest := v1.Group("/suggest")
		suggest.Use(SuggestRateLimit(deps.Redis, deps.SuggestPerMinute))
		{
			suggest.POST("/style", suggestHandler.SuggestStyle)
			suggest.POST("/text", suggestHandler.ImproveText)
		}
	}
}
