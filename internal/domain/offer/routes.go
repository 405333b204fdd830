package offer

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/offers", handler.ListOffers)
	r.GET("/jobs", handler.ListJobs)
	r.GET("/jobs/:slug", handler.GetJob)
}

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.POST("/offers/:id/apply", handler.ApplyOffer)
	protected.GET("/offer-applications/mine", handler.MyOfferApplications)
	protected.POST("/jobs/:slug/apply", handler.ApplyJob)
	protected.GET("/job-applications/mine", handler.MyJobApplications)
}

func RegisterAdminRoutes(admin *gin.RouterGroup, handler *Handler) {
	admin.GET("/offers", handler.AdminListOffers)
	admin.POST("/offers", handler.CreateOffer)
	admin.GET("/offers/:id/applications", handler.OfferApplications)
	admin.PATCH("/offer-applications/:id", handler.DecideOfferApplication)

	admin.GET("/jobs", handler.AdminListJobs)
	admin.POST("/jobs", handler.CreateJob)
	admin.PATCH("/jobs/:id/status", handler.SetJobStatus)
	admin.GET("/jobs/:id/applications", handler.JobApplications)
	admin.PATCH("/job-applications/:id", handler.DecideJobApplication)
}
